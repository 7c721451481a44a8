package partition

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/table"
)

// Record is the serialized form of a partition. The first three keys are
// the interchange format; seed and session_id are informational.
type Record struct {
	MoviesFilterMetadata     table.FilterMetadata `json:"movies_filter_metadata"`
	CharactersFilterMetadata table.FilterMetadata `json:"characters_filter_metadata"`
	Data                     [][]string           `json:"data"`
	Seed                     *int64               `json:"seed,omitempty"`
	SessionID                string               `json:"session_id,omitempty"`
}

// NewRecord tags p with the provenance of g.
func NewRecord(g *graph.Graph, p Partition) *Record {
	meta := g.Metadata()
	data := make([][]string, len(p))
	for i, c := range p {
		data[i] = append([]string(nil), c...)
	}
	return &Record{
		MoviesFilterMetadata:     meta.Movies,
		CharactersFilterMetadata: meta.Characters,
		Data:                     data,
	}
}

// Partition returns the stored communities.
func (r *Record) Partition() Partition {
	p := make(Partition, len(r.Data))
	for i, c := range r.Data {
		p[i] = append(Community(nil), c...)
	}
	return p
}

// Check verifies that the stored provenance equals the provenance of g on
// both sides. name is used for error context only.
func (r *Record) Check(g *graph.Graph, name string) error {
	meta := g.Metadata()
	if !r.MoviesFilterMetadata.Equal(meta.Movies) {
		return &ProvenanceMismatchError{Name: name, Side: "movies", Expected: meta.Movies, Found: r.MoviesFilterMetadata}
	}
	if !r.CharactersFilterMetadata.Equal(meta.Characters) {
		return &ProvenanceMismatchError{Name: name, Side: "characters", Expected: meta.Characters, Found: r.CharactersFilterMetadata}
	}
	return nil
}

// Encode serializes p with the provenance of g as indented JSON.
func Encode(g *graph.Graph, p Partition) ([]byte, error) {
	return EncodeRecord(NewRecord(g, p))
}

// EncodeRecord serializes r as indented JSON.
func EncodeRecord(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("failed to encode partition: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeRecord parses a record and checks its provenance against g. Nothing
// is returned unless the check passes.
func DecodeRecord(g *graph.Graph, data []byte, name string) (*Record, error) {
	var raw struct {
		Record
		Movies     *table.FilterMetadata `json:"movies_filter_metadata"`
		Characters *table.FilterMetadata `json:"characters_filter_metadata"`
		Data       *[][]string           `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformedRecord, name, err)
	}
	switch {
	case raw.Movies == nil:
		return nil, fmt.Errorf("%w %s: missing movies_filter_metadata", ErrMalformedRecord, name)
	case raw.Characters == nil:
		return nil, fmt.Errorf("%w %s: missing characters_filter_metadata", ErrMalformedRecord, name)
	case raw.Data == nil:
		return nil, fmt.Errorf("%w %s: missing data", ErrMalformedRecord, name)
	}

	rec := &raw.Record
	rec.MoviesFilterMetadata = *raw.Movies
	rec.CharactersFilterMetadata = *raw.Characters
	rec.Data = *raw.Data
	if err := rec.Check(g, name); err != nil {
		return nil, err
	}
	return rec, nil
}

// Decode parses data and returns its partition after checking provenance
// against g.
func Decode(g *graph.Graph, data []byte) (Partition, error) {
	rec, err := DecodeRecord(g, data, "")
	if err != nil {
		return nil, err
	}
	return rec.Partition(), nil
}
