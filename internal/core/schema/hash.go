package schema

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash fingerprints the block layout. Values such as ranges and
// defaults do not participate; only what changes buffer layout does.
func (s *Scene) ComputeHash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(s.Name)
	for _, p := range s.Parameters {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(p.Key)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strconv.Itoa(int(p.Type)))
	}
	return d.Sum64()
}

func (s *Scene) Rehash() {
	s.Hash = s.ComputeHash()
}
