// Package source: wire codecs for positions, node types and nodes.
//
// Positions travel as two-element arrays, node types as compound
// {"id","nodeSection"} records (decoding also accepts the bare "normal"
// marker and a bare role id, both of which older snapshots emit), and
// poiId as string or number with 0/""/null meaning NoPOI.
package source

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// MarshalJSON encodes the position as the wire pair [x, y].
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes the wire pair [x, y].
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("source: position: %w", err)
	}
	p.X, p.Y = pair[0], pair[1]

	return nil
}

// typeWire is the compound wire form of a NodeType.
type typeWire struct {
	ID      int `json:"id"`
	Section int `json:"nodeSection"`
}

// MarshalJSON always emits the compound form.
func (t NodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(typeWire{ID: t.ID, Section: int(t.Section)})
}

// UnmarshalJSON accepts the compound record, the bare "normal" marker, or a
// bare role id. The role table is authoritative for the section on all forms.
func (t *NodeType) UnmarshalJSON(data []byte) error {
	var compound typeWire
	if err := json.Unmarshal(data, &compound); err == nil && compound.ID != 0 {
		resolved, ok := TypeByID(compound.ID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrBadNodeType, compound.ID)
		}
		*t = resolved

		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name == "normal" {
			*t = Normal

			return nil
		}

		return fmt.Errorf("%w: %q", ErrBadNodeType, name)
	}

	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		resolved, ok := TypeByID(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrBadNodeType, id)
		}
		*t = resolved

		return nil
	}

	return fmt.Errorf("%w: %s", ErrBadNodeType, string(data))
}

// nodeWire mirrors the wire shape of one node record; poiId stays raw until
// normalized.
type nodeWire struct {
	Name string          `json:"name"`
	Pos  Position        `json:"pos"`
	Type NodeType        `json:"type"`
	POI  json.RawMessage `json:"poiId"`
}

// MarshalJSON emits the wire record with the POI sentinel normalized.
func (n Node) MarshalJSON() ([]byte, error) {
	poi := n.POI
	if poi == "" {
		poi = NoPOI
	}

	return json.Marshal(struct {
		Name string   `json:"name"`
		Pos  Position `json:"pos"`
		Type NodeType `json:"type"`
		POI  string   `json:"poiId"`
	}{n.Name, n.Pos, n.Type, poi})
}

// UnmarshalJSON decodes the wire record, normalizing poiId to NoPOI whenever
// the store wrote "", 0, "0", null or nothing.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("source: node: %w", err)
	}
	poi, err := normalizePOI(w.POI)
	if err != nil {
		return err
	}
	n.Name, n.Pos, n.Type, n.POI = w.Name, w.Pos, w.Type, poi

	return nil
}

// normalizePOI folds every "no POI" spelling onto NoPOI.
func normalizePOI(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return NoPOI, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return NoPOI, nil
		}

		return s, nil
	}

	var num int64
	if err := json.Unmarshal(raw, &num); err == nil {
		if num == 0 {
			return NoPOI, nil
		}

		return strconv.FormatInt(num, 10), nil
	}

	return "", fmt.Errorf("source: poiId: unsupported form %s", string(raw))
}
