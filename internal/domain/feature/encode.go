package feature

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

const hashBuckets = 100000

// HashCategory maps a categorical string onto [0, 100000) using the first
// eight hex digits of its MD5 digest. It is stable, not collision free.
func HashCategory(value string) float64 {
	sum := md5.Sum([]byte(value))
	prefix := hex.EncodeToString(sum[:])[:8]
	n, _ := strconv.ParseUint(prefix, 16, 64)
	return float64(n % hashBuckets)
}

// HashEncode lays the Set out over DefaultOrder. Categorical slots are hashed,
// everything else is the field's float value or 0.
func HashEncode(s Set) []float64 {
	vector := make([]float64, len(DefaultOrder))
	for i, name := range DefaultOrder {
		vector[i] = hashSlot(s, name)
	}
	return vector
}

func hashSlot(s Set, name string) float64 {
	if KindOf(name) == KindCategorical {
		if text, ok := s.Text(name); ok && text != "" {
			return HashCategory(text)
		}
		return 0
	}
	return s.Float(name)
}

// Metadata is the encoder description shipped alongside a trained model.
type Metadata struct {
	FeatureOrder []string `json:"feature_order"`
	Encoders     Encoders `json:"encoders"`
}

// Encoders lists categorical encoders by kind.
type Encoders struct {
	OneHot map[string][]string `json:"one_hot"`
}

// HasOneHot reports whether metadata-driven encoding applies.
func (m Metadata) HasOneHot() bool {
	return len(m.Encoders.OneHot) > 0
}

// Order returns the declared feature order, or DefaultOrder when none is given.
func (m Metadata) Order() []string {
	if len(m.FeatureOrder) > 0 {
		return m.FeatureOrder
	}
	return DefaultOrder
}

// MetadataEncode lays the Set out over the metadata order and returns the
// vector with its index-aligned labels.
//
// A name is a one-hot column when the text before its first underscore is a
// declared one-hot field. Fields whose own name contains an underscore
// (transaction_type) therefore never match and encode through the fallbacks.
func MetadataEncode(s Set, meta Metadata) ([]float64, []string) {
	order := meta.Order()
	vector := make([]float64, len(order))
	labels := make([]string, len(order))

	for i, name := range order {
		labels[i] = name
		vector[i] = metadataSlot(s, meta, name)
	}
	return vector, labels
}

func metadataSlot(s Set, meta Metadata, name string) float64 {
	if field, option, found := strings.Cut(name, "_"); found {
		if _, declared := meta.Encoders.OneHot[field]; declared {
			text, _ := s.Text(field)
			if strings.TrimSpace(text) == option {
				return 1
			}
			return 0
		}
	}

	switch kind := KindOf(name); {
	case kind == KindNumeric || kind == KindBoolean:
		return s.Float(name)
	case isIdentifier(name):
		if text, ok := s.Text(name); ok && text != "" {
			return HashCategory(text)
		}
		return 0
	default:
		return s.Float(name)
	}
}
