package gene

import "testing"

func TestParseGenomeSplitsOnMarker(t *testing.T) {
	raw := []byte{byte(OpHalt)}
	raw = append(raw, Marker[:]...)
	raw = append(raw, byte(OpPushByte), 1, byte(OpHalt))

	genes, err := ParseGenome(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(genes) != 2 {
		t.Fatalf("expected 2 genes, got %d", len(genes))
	}
	if genes[0].ID != GeneGenesis || genes[1].ID != GeneGestation {
		t.Fatalf("unexpected gene ids: %d, %d", genes[0].ID, genes[1].ID)
	}
}

func TestParseGenomeMissingGenesisIsEmptyInput(t *testing.T) {
	_, err := ParseGenome(nil)
	if err != ErrMissingGenesis {
		t.Fatalf("expected ErrMissingGenesis, got %v", err)
	}
}

func TestParseGenomeSingleSegmentIsGenesis(t *testing.T) {
	genes, err := ParseGenome([]byte{byte(OpHalt)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(genes) != 1 || genes[0].ID != GeneGenesis {
		t.Fatalf("expected a single Genesis gene, got %+v", genes)
	}
}
