package parserust

import (
	"encoding/json"
	"fmt"
	"strings"
)

// typeNode is a decoded rustdoc type AST node. Kind selects which fields
// are meaningful, mirroring rustdoc JSON's tagged-union encoding.
type typeNode struct {
	Kind string

	// primitive
	Primitive string
	// generic (bare type parameter reference, e.g. "T")
	GenericName string
	// resolved_path
	PathName string
	PathID   string
	PathArgs []typeNode
	// borrowed_ref / raw_pointer
	Mutable  bool
	Lifetime string
	Pointee  *typeNode
	// tuple / impl_trait / dyn_trait bounds
	Elems []typeNode
	// slice / array
	Len string
	// qualified_path (<Self as Trait>::Name)
	Self      *typeNode
	TraitName string
	TraitID   string
	AssocName string
	// function_pointer
	Inputs []typeNode
	Output *typeNode
}

// decodeType unmarshals one rustdoc type AST node. Unrecognized shapes
// decode to a best-effort "opaque" kind carrying the raw JSON as display
// text, so traversal never aborts on a schema variant this parser does
// not yet model explicitly.
func decodeType(raw json.RawMessage) *typeNode {
	if len(raw) == 0 {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return &typeNode{Kind: "primitive", Primitive: asString}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return &typeNode{Kind: "opaque", Primitive: string(raw)}
	}

	if v, ok := obj["primitive"]; ok {
		var name string
		_ = json.Unmarshal(v, &name)
		return &typeNode{Kind: "primitive", Primitive: name}
	}
	if v, ok := obj["generic"]; ok {
		var name string
		_ = json.Unmarshal(v, &name)
		return &typeNode{Kind: "generic", GenericName: name}
	}
	if v, ok := obj["resolved_path"]; ok {
		var rp struct {
			Name string `json:"name"`
			ID   string `json:"id"`
			Args struct {
				AngleBracketed struct {
					Args []struct {
						Type json.RawMessage `json:"type"`
					} `json:"args"`
				} `json:"angle_bracketed"`
			} `json:"args"`
		}
		_ = json.Unmarshal(v, &rp)
		n := &typeNode{Kind: "resolved_path", PathName: rp.Name, PathID: rp.ID}
		for _, a := range rp.Args.AngleBracketed.Args {
			if t := decodeType(a.Type); t != nil {
				n.PathArgs = append(n.PathArgs, *t)
			}
		}
		return n
	}
	if v, ok := obj["borrowed_ref"]; ok {
		var br struct {
			Lifetime string          `json:"lifetime"`
			Mutable  bool            `json:"mutable"`
			Type     json.RawMessage `json:"type"`
		}
		_ = json.Unmarshal(v, &br)
		return &typeNode{Kind: "borrowed_ref", Lifetime: br.Lifetime, Mutable: br.Mutable, Pointee: decodeType(br.Type)}
	}
	if v, ok := obj["raw_pointer"]; ok {
		var rp struct {
			Mutable bool            `json:"mutable"`
			Type    json.RawMessage `json:"type"`
		}
		_ = json.Unmarshal(v, &rp)
		return &typeNode{Kind: "raw_pointer", Mutable: rp.Mutable, Pointee: decodeType(rp.Type)}
	}
	if v, ok := obj["tuple"]; ok {
		var elems []json.RawMessage
		_ = json.Unmarshal(v, &elems)
		n := &typeNode{Kind: "tuple"}
		for _, e := range elems {
			if t := decodeType(e); t != nil {
				n.Elems = append(n.Elems, *t)
			}
		}
		return n
	}
	if v, ok := obj["slice"]; ok {
		return &typeNode{Kind: "slice", Pointee: decodeType(v)}
	}
	if v, ok := obj["array"]; ok {
		var arr struct {
			Type json.RawMessage `json:"type"`
			Len  string          `json:"len"`
		}
		_ = json.Unmarshal(v, &arr)
		return &typeNode{Kind: "array", Pointee: decodeType(arr.Type), Len: arr.Len}
	}
	if v, ok := obj["impl_trait"]; ok {
		var bounds []json.RawMessage
		_ = json.Unmarshal(v, &bounds)
		n := &typeNode{Kind: "impl_trait"}
		for _, b := range bounds {
			n.Elems = append(n.Elems, *decodeBound(b))
		}
		return n
	}
	if v, ok := obj["dyn_trait"]; ok {
		var dt struct {
			Traits []struct {
				Trait struct {
					Name string `json:"name"`
					ID   string `json:"id"`
				} `json:"trait"`
			} `json:"traits"`
		}
		_ = json.Unmarshal(v, &dt)
		n := &typeNode{Kind: "dyn_trait"}
		for _, t := range dt.Traits {
			n.Elems = append(n.Elems, typeNode{Kind: "resolved_path", PathName: t.Trait.Name, PathID: t.Trait.ID})
		}
		return n
	}
	if v, ok := obj["qualified_path"]; ok {
		var qp struct {
			Name     string          `json:"name"`
			SelfType json.RawMessage `json:"self_type"`
			Trait    *struct {
				Name string `json:"name"`
				ID   string `json:"id"`
			} `json:"trait"`
		}
		_ = json.Unmarshal(v, &qp)
		n := &typeNode{Kind: "qualified_path", AssocName: qp.Name, Self: decodeType(qp.SelfType)}
		if qp.Trait != nil {
			n.TraitName, n.TraitID = qp.Trait.Name, qp.Trait.ID
		}
		return n
	}
	if v, ok := obj["function_pointer"]; ok {
		var fp struct {
			Sig functionSig `json:"sig"`
		}
		_ = json.Unmarshal(v, &fp)
		n := &typeNode{Kind: "function_pointer"}
		for _, in := range fp.Sig.Inputs {
			if t := decodeType(in[1]); t != nil {
				n.Inputs = append(n.Inputs, *t)
			}
		}
		n.Output = decodeType(fp.Sig.Output)
		return n
	}
	return &typeNode{Kind: "opaque", Primitive: string(raw)}
}

func decodeBound(raw json.RawMessage) *typeNode {
	var b struct {
		TraitBound struct {
			Trait struct {
				Name string `json:"name"`
				ID   string `json:"id"`
			} `json:"trait"`
		} `json:"trait_bound"`
	}
	_ = json.Unmarshal(raw, &b)
	return &typeNode{Kind: "resolved_path", PathName: b.TraitBound.Trait.Name, PathID: b.TraitBound.Trait.ID}
}

// typeToString renders a type AST node into a human-readable Rust-style
// display string.
func typeToString(n *typeNode) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case "primitive":
		return n.Primitive
	case "generic":
		return n.GenericName
	case "resolved_path":
		s := n.PathName
		if len(n.PathArgs) > 0 {
			parts := make([]string, len(n.PathArgs))
			for i := range n.PathArgs {
				parts[i] = typeToString(&n.PathArgs[i])
			}
			s += "<" + strings.Join(parts, ", ") + ">"
		}
		return s
	case "borrowed_ref":
		prefix := "&"
		if n.Lifetime != "" {
			prefix += n.Lifetime + " "
		}
		if n.Mutable {
			prefix += "mut "
		}
		return prefix + typeToString(n.Pointee)
	case "raw_pointer":
		if n.Mutable {
			return "*mut " + typeToString(n.Pointee)
		}
		return "*const " + typeToString(n.Pointee)
	case "tuple":
		parts := make([]string, len(n.Elems))
		for i := range n.Elems {
			parts[i] = typeToString(&n.Elems[i])
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case "slice":
		return "[" + typeToString(n.Pointee) + "]"
	case "array":
		return fmt.Sprintf("[%s; %s]", typeToString(n.Pointee), n.Len)
	case "impl_trait":
		return "impl " + joinBounds(n.Elems)
	case "dyn_trait":
		return "dyn " + joinBounds(n.Elems)
	case "qualified_path":
		if n.TraitName != "" {
			return fmt.Sprintf("<%s as %s>::%s", typeToString(n.Self), n.TraitName, n.AssocName)
		}
		return fmt.Sprintf("%s::%s", typeToString(n.Self), n.AssocName)
	case "function_pointer":
		parts := make([]string, len(n.Inputs))
		for i := range n.Inputs {
			parts[i] = typeToString(&n.Inputs[i])
		}
		out := typeToString(n.Output)
		if out == "" || out == "()" {
			return fmt.Sprintf("fn(%s)", strings.Join(parts, ", "))
		}
		return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), out)
	default:
		return n.Primitive
	}
}

func joinBounds(elems []typeNode) string {
	parts := make([]string, len(elems))
	for i := range elems {
		parts[i] = typeToString(&elems[i])
	}
	return strings.Join(parts, " + ")
}

// resolvedPathID returns the backing item id for a resolved_path node,
// used to back-resolve a return/param type into a symbol_key once the
// id-to-path table is known.
func resolvedPathID(n *typeNode) string {
	if n == nil || n.Kind != "resolved_path" {
		return ""
	}
	return n.PathID
}
