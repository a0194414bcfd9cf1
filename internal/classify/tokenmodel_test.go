package classify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/vestige/internal/model"
)

// TestHeuristic_Labels exercises the built-in weights on comments that are
// clearly one thing or the other.
func TestHeuristic_Labels(t *testing.T) {
	tests := []struct {
		text     string
		expected model.Label
	}{
		{"# x = 1", model.Code},
		{"# print(x)", model.Code},
		{"# import os", model.Code},
		{"# return result", model.Code},
		{"# self.total = compute(values)", model.Code},
		{"# if x > 3:", model.Code},
		{"# This is a comment", model.NotCode},
		{"# Compute the running total of the values.", model.NotCode},
		{"# for each item in the list", model.NotCode},
		{"# TODO: remove this once the API is stable", model.NotCode},
		{"# -*- coding: utf-8 -*-", model.NotCode},
		{"#!/usr/bin/env python3", model.NotCode},
		{"# noqa: E501", model.NotCode},
		{"# see https://example.com/docs", model.NotCode},
		{"# see https://x.org/a=b", model.NotCode},
		{"# docs: https://example.com/search?q=comments&page=2", model.NotCode},
		{`# requests.get("https://x.org/a=b")`, model.Code},
		{"#", model.NotCode},
	}

	m := Heuristic()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			label, err := Decide(context.Background(), m, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, label, "score=%.2f", m.Score(tt.text))
		})
	}
}

// TestTokenModel_Predict checks that the distribution sums to one and that
// the argmax follows the sign of the score.
func TestTokenModel_Predict(t *testing.T) {
	m := &TokenModel{Version: ArtifactVersion, Bias: -1, Weights: map[string]float64{FeatureAssign: 3}}

	dist, err := m.Predict(context.Background(), "# a = b")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dist[0]+dist[1], 1e-9)
	assert.Equal(t, model.Code, dist.Argmax())

	dist, err = m.Predict(context.Background(), "# nothing to see")
	require.NoError(t, err)
	assert.Equal(t, model.NotCode, dist.Argmax())
}

// TestParseModel covers valid artifacts, JSONC tolerance, and rejection of
// malformed or incompatible artifacts.
func TestParseModel(t *testing.T) {
	t.Run("valid with comments", func(t *testing.T) {
		m, err := ParseModel([]byte(`{
			// trained on the default corpus
			"version": 1,
			"bias": -0.5,
			"weights": {"sym:assign": 2.5, "shape:prose": -3,},
		}`))
		require.NoError(t, err)
		assert.Equal(t, -0.5, m.Bias)
		assert.Equal(t, 2.5, m.Weights[FeatureAssign])
	})

	t.Run("wrong version", func(t *testing.T) {
		_, err := ParseModel([]byte(`{"version": 2, "weights": {"sym:assign": 1}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version 2")
	})

	t.Run("no weights", func(t *testing.T) {
		_, err := ParseModel([]byte(`{"version": 1, "bias": 1}`))
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseModel([]byte(`<html>not found</html>`))
		assert.Error(t, err)
	})
}

// TestLoadModel verifies that load failures are reported as an unavailable
// classifier and that a valid file loads.
func TestLoadModel(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrClassifierUnavailable)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version": 9}`), 0o644))
	_, err = LoadModel(bad)
	assert.ErrorIs(t, err, model.ErrClassifierUnavailable)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"version": 1, "bias": 0, "weights": {"sym:call": 1}}`), 0o644))
	m, err := LoadModel(good)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Weights[FeatureCall])
}

// TestFeatures spot-checks individual feature detectors.
func TestFeatures(t *testing.T) {
	f := Features("#   y = foo(bar.baz)  ")
	assert.Equal(t, 1.0, f[FeatureAssign])
	assert.Equal(t, 1.0, f[FeatureCall])
	assert.Equal(t, 1.0, f[FeatureAttribute])
	assert.NotContains(t, f, FeatureProse)

	f = Features("# x == y")
	assert.NotContains(t, f, FeatureAssign, "comparison is not assignment")
	assert.Equal(t, 1.0, f[FeatureOperator])

	f = Features("# def main():")
	assert.Equal(t, 1.0, f[FeatureFirstToken+"def"])
	assert.Equal(t, 1.0, f[FeatureEndColon])

	f = Features("# Def is capitalised so it reads as prose")
	assert.NotContains(t, f, FeatureFirstToken+"def")

	assert.Equal(t, map[string]float64{FeatureEmpty: 1}, Features("#   "))
}

// TestFeatures_URL keeps the symbols inside a URL out of the code counts.
func TestFeatures_URL(t *testing.T) {
	f := Features("# see https://x.org/a=b")
	assert.Equal(t, 1.0, f[FeatureURL])
	assert.NotContains(t, f, FeatureAssign)
	assert.NotContains(t, f, FeatureAttribute)
	assert.NotContains(t, f, FeatureOperator)

	f = Features(`# fetch("https://x.org/a=b")`)
	assert.NotContains(t, f, FeatureURL, "a quoted URL is a string literal")
	assert.Equal(t, 1.0, f[FeatureCall])
	assert.NotContains(t, f, FeatureAssign)
}

// TestStripDelimiter checks delimiter and whitespace removal.
func TestStripDelimiter(t *testing.T) {
	assert.Equal(t, "x = 1", StripDelimiter("# x = 1"))
	assert.Equal(t, "x = 1", StripDelimiter("  //x = 1 "))
	assert.Equal(t, "plain", StripDelimiter("plain"))
	assert.Equal(t, "", StripDelimiter("#"))
}
