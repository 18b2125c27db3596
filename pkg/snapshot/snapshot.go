// Package snapshot persists assembly structures: nodes with positions,
// links with endpoint indices, a length class, and an orientation hint for
// unbound links. The format is plain JSON; the core only needs something
// that can enumerate nodes and links, and this is it.
package snapshot

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/calder/trestle/pkg/assembly"
)

// FormatVersion identifies the snapshot schema.
const FormatVersion = 1

// NodeRecord is one ball in a snapshot.
type NodeRecord struct {
	Position [3]float64 `json:"position"`
	Locked   bool       `json:"locked,omitempty"`
}

// LinkRecord is one strut. Anchor and Free index into the snapshot's node
// list; Free is -1 for a pending strut. Exactly one of Class or Length
// should be set; Class resolves through the session's length-class table.
type LinkRecord struct {
	Anchor    int        `json:"anchor"`
	Free      int        `json:"free"`
	Class     string     `json:"class,omitempty"`
	Length    float64    `json:"length,omitempty"`
	Direction [3]float64 `json:"direction,omitempty"`
}

// Structure is a complete persisted assembly.
type Structure struct {
	Version int          `json:"version"`
	Nodes   []NodeRecord `json:"nodes"`
	Links   []LinkRecord `json:"links"`
}

// Capture snapshots a live assembly. Node handles compact into dense
// indices in ascending handle order.
func Capture(asm *assembly.Assembly) *Structure {
	st := &Structure{Version: FormatVersion}

	index := make(map[assembly.NodeID]int)
	for _, nid := range asm.Nodes() {
		index[nid] = len(st.Nodes)
		p := asm.Pos(nid)
		st.Nodes = append(st.Nodes, NodeRecord{
			Position: [3]float64{p.X, p.Y, p.Z},
			Locked:   asm.Locked(nid),
		})
	}

	for _, lid := range asm.Links() {
		rec := LinkRecord{
			Anchor: index[asm.Anchor(lid)],
			Free:   -1,
			Length: asm.Length(lid),
		}
		if asm.Bound(lid) {
			rec.Free = index[asm.Free(lid)]
		} else {
			d := asm.AnchorDir(lid)
			rec.Direction = [3]float64{d.X, d.Y, d.Z}
		}
		st.Links = append(st.Links, rec)
	}
	return st
}

// Restore builds a fresh assembly from a snapshot. classLength resolves a
// length class name; pass nil to require explicit lengths. Restore trusts
// positions as stored and does not re-solve; run solver.Audit afterwards to
// re-check distances.
func (st *Structure) Restore(classLength func(string) (float64, error)) (*assembly.Assembly, error) {
	if st.Version != FormatVersion {
		return nil, errors.Newf("snapshot: unsupported version %d", st.Version)
	}

	asm := assembly.New()
	ids := make([]assembly.NodeID, len(st.Nodes))
	for i, rec := range st.Nodes {
		id := asm.AddNode(v3.Vec{X: rec.Position[0], Y: rec.Position[1], Z: rec.Position[2]})
		asm.SetLocked(id, rec.Locked)
		ids[i] = id
	}

	for i, rec := range st.Links {
		if rec.Anchor < 0 || rec.Anchor >= len(ids) {
			return nil, errors.Newf("snapshot: link %d anchor index %d out of range", i, rec.Anchor)
		}
		length := rec.Length
		if rec.Class != "" {
			if classLength == nil {
				return nil, errors.Newf("snapshot: link %d names class %q but no class table is available", i, rec.Class)
			}
			resolved, err := classLength(rec.Class)
			if err != nil {
				return nil, errors.Wrapf(err, "snapshot: link %d", i)
			}
			length = resolved
		}
		dir := v3.Vec{X: rec.Direction[0], Y: rec.Direction[1], Z: rec.Direction[2]}
		lid, err := asm.AddLink(ids[rec.Anchor], length, dir)
		if err != nil {
			return nil, errors.Wrapf(err, "snapshot: link %d", i)
		}
		if rec.Free >= 0 {
			if rec.Free >= len(ids) {
				return nil, errors.Newf("snapshot: link %d free index %d out of range", i, rec.Free)
			}
			if err := asm.BindFree(lid, ids[rec.Free]); err != nil {
				return nil, errors.Wrapf(err, "snapshot: link %d", i)
			}
		}
	}
	return asm, nil
}

// Write encodes a structure as indented JSON.
func Write(w io.Writer, st *Structure) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return errors.Wrap(err, "snapshot: encode")
	}
	return nil
}

// Read decodes a structure from JSON.
func Read(r io.Reader) (*Structure, error) {
	var st Structure
	if err := json.NewDecoder(r).Decode(&st); err != nil {
		return nil, errors.Wrap(err, "snapshot: decode")
	}
	return &st, nil
}
