package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentic-research/fextract/api"
)

const sampleTerraform = `
region = "us-east-1"
count  = 3
tags   = { team = "data", env = "prod" }
bucket = "${var.prefix}-logs"

resource "aws_s3_bucket" "logs" {
  acl = "private"
}

resource "aws_s3_bucket" "assets" {
  acl = "public-read"
}

provider "aws" {
  region = var.region
}
`

func TestHCLHandler(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "main.tf", []byte(sampleTerraform))
	p := payloadOf[*api.HCLPayload](t, NewHCLHandler().Extract(path))
	c := p.Content

	assert.Equal(t, "us-east-1", c["region"])
	assert.Equal(t, json.Number("3"), c["count"])
	assert.Equal(t, map[string]any{"team": "data", "env": "prod"}, c["tags"])
	assert.Equal(t, `"${var.prefix}-logs"`, c["bucket"], "unevaluable expressions keep their source")

	// Blocks of one type with different labels merge by label
	assert.Equal(t, map[string]any{
		"aws_s3_bucket": map[string]any{
			"logs":   map[string]any{"acl": "private"},
			"assets": map[string]any{"acl": "public-read"},
		},
	}, c["resource"])

	assert.Equal(t, map[string]any{"aws": map[string]any{"region": "var.region"}}, c["provider"])
}

func TestHCLHandler_BlockMerging(t *testing.T) {
	src := `
resource "a" "x" { n = 1 }
resource "a" "y" { n = 2 }
resource "b" "x" { n = 3 }
resource "a" "x" { n = 4 }

ingress { port = 80 }
ingress { port = 443 }

settings { mode = "fast" }
`
	path := writeFixture(t, t.TempDir(), "blocks.hcl", []byte(src))
	c := payloadOf[*api.HCLPayload](t, NewHCLHandler().Extract(path)).Content

	one := func(n string) map[string]any { return map[string]any{"n": json.Number(n)} }
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"x": []any{one("1"), one("4")},
			"y": one("2"),
		},
		"b": map[string]any{"x": one("3")},
	}, c["resource"])

	assert.Equal(t, []any{
		map[string]any{"port": json.Number("80")},
		map[string]any{"port": json.Number("443")},
	}, c["ingress"])
	assert.Equal(t, map[string]any{"mode": "fast"}, c["settings"])
}

func TestHCLHandler_SyntaxError(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "broken.hcl", []byte("block {\n  a = \n"))
	requireFailure(t, NewHCLHandler().Extract(path), api.FormatHCL, api.KindParse)
}
