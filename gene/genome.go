/*
=================================================================================
GENOME PARSING
=================================================================================

The genome is a concatenation of gene segments separated by the two-byte
marker "GN" (0x47 0x4E), per spec.md §3/§6. Gene id 0 is Genesis, ids 1-3 are
Gestation/Mitosis/Apoptosis, ids >= SystemGeneCount are user genes. A genome
missing gene 0 is rejected at construction (spec.md §6, §7).
=================================================================================
*/
package gene

import "errors"

// Marker separates gene segments within a genome byte stream.
var Marker = [2]byte{'G', 'N'}

// Reserved gene ids, fixed per SPEC_FULL.md §4 (system_gene_count = 4).
const (
	GeneGenesis     = 0
	GeneGestation   = 1
	GeneMitosis     = 2
	GeneApoptosis   = 3
	SystemGeneCount = 4
)

// ErrMissingGenesis is returned when a genome has no segment for gene 0.
var ErrMissingGenesis = errors.New("gene: genome is missing the Genesis segment (gene id 0)")

// Gene is one decoded, independently addressable bytecode segment.
type Gene struct {
	ID           uint64
	Instructions []Instruction
}

// ParseGenome splits raw genome bytes on the GN marker and decodes each
// resulting segment independently. It returns ErrMissingGenesis if no
// segment exists for gene id 0.
func ParseGenome(raw []byte) ([]Gene, error) {
	if len(raw) == 0 {
		return nil, ErrMissingGenesis
	}
	segments := splitSegments(raw)

	genes := make([]Gene, 0, len(segments))
	for i, seg := range segments {
		instrs, _ := Decode(seg) // invalid jump targets become warnings, not parse failures
		genes = append(genes, Gene{ID: uint64(i), Instructions: instrs})
	}
	return genes, nil
}

func splitSegments(raw []byte) [][]byte {
	var segments [][]byte
	start := 0
	for i := 0; i+1 < len(raw); i++ {
		if raw[i] == Marker[0] && raw[i+1] == Marker[1] {
			segments = append(segments, raw[start:i])
			start = i + 2
			i++ // skip the second marker byte
		}
	}
	segments = append(segments, raw[start:])
	return segments
}
