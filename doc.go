/*
Package polismath is the mathematical engine of an opinion-clustering
platform: it turns a stream of agree/disagree/pass votes over a shared set
of statements into participant opinion groups, per-statement
representativeness, and routing priorities editors can act on.

# Overview

A conversation accumulates votes into a named sparse matrix (package
matrix), projects it onto its top principal components (package pca),
clusters participants into opinion groups by silhouette-scored k-means
(package cluster), and computes which groups find which statements
distinctively representative (package repness) and how strong the
group-aware consensus is on each one (package groupviz). Package
conversation orchestrates the pipeline end to end and owns all mutable
per-conversation state.

# Architecture

  - matrix/       named, growable vote matrix with dense/NaN views
  - statkit/      proportion tests, confidence intervals, significance gates
  - pca/          mean-centered SVD projection, sparsity-aware sampling
  - cluster/      k-means++ with automatic k selection
  - repness/      per-group statement representativeness
  - groupviz/     group-aware consensus and per-statement priority
  - conversation/ pipeline orchestrator, state, result-document rendering
  - config/       typed, validated pipeline parameters
  - telemetry/    structured logging and Prometheus instrumentation
  - ingest/       adapter seams for vote/moderation sources and document sinks

# Basic usage

	c := conversation.New("conv-1")
	c.UpdateVotes(conversation.VoteDelta{Votes: []conversation.VoteRecord{
	    {PID: "p1", TID: "t1", Vote: "agree"},
	    {PID: "p2", TID: "t1", Vote: "disagree"},
	}}, true)
	doc := c.Summary()
	_ = doc.ClojureView()

# Determinism

Every pseudorandom choice in the pipeline — k-means++ initialization, PCA's
sparsity-aware sampling — is seeded from config.Parameters.Seed, so a given
vote history always recomputes to the same result regardless of goroutine
scheduling order.

# Failure handling

Per-stage failures (e.g. SVD non-convergence on a degenerate matrix)
degrade to that stage's empty-state output rather than aborting the whole
recompute; see the conversation package's degrade helper.
*/
package polismath
