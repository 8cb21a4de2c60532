package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/agentic-research/fextract/api"
)

// NewHCLHandler converts HCL and Terraform files into nested maps.
func NewHCLHandler() *FormatHandler {
	return newFormatHandler(api.FormatHCL, extractHCL)
}

func extractHCL(path string) (any, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file, diags := hclsyntax.ParseConfig(src, path, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, parseErrorf("%s", diags.Error())
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, parseErrorf("unexpected body type %T", file.Body)
	}
	return &api.HCLPayload{Content: convertHCLBody(body, src)}, nil
}

// convertHCLBody maps attributes to their values and blocks to nested maps
// keyed by block type, then by each label in turn. Blocks sharing a type and
// a label prefix merge into one map; only blocks with identical type and
// labels coalesce into a list.
func convertHCLBody(body *hclsyntax.Body, src []byte) map[string]any {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		out[name] = hclValue(attr.Expr, src)
	}
	for _, block := range body.Blocks {
		insertBlock(out, append([]string{block.Type}, block.Labels...), convertHCLBody(block.Body, src))
	}
	return out
}

// insertBlock walks keys through nested maps, creating them as needed, and
// coalesces v at the last key. A non-map value in the way ends the walk and
// the remaining keys are nested around v.
func insertBlock(m map[string]any, keys []string, v any) {
	for len(keys) > 1 {
		next, ok := m[keys[0]]
		if !ok {
			next = make(map[string]any)
			m[keys[0]] = next
		}
		child, ok := next.(map[string]any)
		if !ok {
			break
		}
		m, keys = child, keys[1:]
	}
	for i := len(keys) - 1; i >= 1; i-- {
		v = map[string]any{keys[i]: v}
	}
	coalesce(m, keys[0], v)
}

// hclValue evaluates expr without variables or functions. Expressions that
// need either are kept as their source text.
func hclValue(expr hclsyntax.Expression, src []byte) any {
	source := func() any {
		return strings.TrimSpace(string(expr.Range().SliceBytes(src)))
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() || !val.IsWhollyKnown() {
		return source()
	}
	if val.IsNull() {
		return nil
	}
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return source()
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return source()
	}
	return out
}
