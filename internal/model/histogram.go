package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Histogram counts labels and remembers the order they were first seen.
// The zero value is an empty histogram ready to use.
type Histogram struct {
	labels []string
	counts map[string]int
}

// HistogramEntry is one label and its count.
type HistogramEntry struct {
	Label string
	Count int
}

// NewHistogram returns a histogram seeded with labels at count zero.
// Seeded labels keep their order and stay present when never incremented.
func NewHistogram(labels ...string) Histogram {
	h := Histogram{}
	for _, l := range labels {
		h.Set(l, 0)
	}
	return h
}

// Add increments the count of label by one.
func (h *Histogram) Add(label string) {
	h.Set(label, h.Count(label)+1)
}

// Set stores the count for label.
func (h *Histogram) Set(label string, count int) {
	if h.counts == nil {
		h.counts = map[string]int{}
	}
	if _, ok := h.counts[label]; !ok {
		h.labels = append(h.labels, label)
	}
	h.counts[label] = count
}

// Count returns the count for label, or 0.
func (h Histogram) Count(label string) int {
	return h.counts[label]
}

// Len returns the number of labels.
func (h Histogram) Len() int {
	return len(h.labels)
}

// Labels returns labels in insertion order.
func (h Histogram) Labels() []string {
	out := make([]string, len(h.labels))
	copy(out, h.labels)
	return out
}

// Entries returns label/count pairs in insertion order.
func (h Histogram) Entries() []HistogramEntry {
	out := make([]HistogramEntry, 0, len(h.labels))
	for _, l := range h.labels {
		out = append(out, HistogramEntry{Label: l, Count: h.counts[l]})
	}
	return out
}

// Total returns the sum of all counts.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h.counts {
		total += c
	}
	return total
}

// MarshalJSON encodes the histogram as an object in insertion order.
func (h Histogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range h.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, l); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(h.counts[l]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeKey writes label as a JSON string without HTML escaping, so bucket
// labels such as ">500" stay readable.
func writeKey(buf *bytes.Buffer, label string) error {
	var key bytes.Buffer
	enc := json.NewEncoder(&key)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(label); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(key.Bytes(), "\n"))
	return nil
}

// UnmarshalJSON decodes an object, keeping the key order of the document.
func (h *Histogram) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	*h = Histogram{}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("histogram: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("histogram: expected string key, got %v", tok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("histogram: count for %q: %w", label, err)
		}
		h.Set(label, count)
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the histogram as a mapping in insertion order.
func (h Histogram) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, l := range h.labels {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: l},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(h.counts[l])},
		)
	}
	return node, nil
}
