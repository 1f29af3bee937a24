// Package vocab holds the class catalogs and colormaps shared by every
// session: the label lists the wire protocol exposes as class_labels and the
// class-index→RGB palettes the renderer gathers from.
package vocab

// Vocabulary identifies a class catalog. Model profiles bind each mode to
// exactly one vocabulary.
type Vocabulary string

const (
	// COCO21 is the 21-entry COCO-stuff subset used by the fast and
	// balanced modes. Index 0 is background.
	COCO21 Vocabulary = "coco21"

	// ADE150 is the 150-entry ADE20K scene-parsing catalog used by the
	// accurate and sota modes. Index 0 ("wall") is treated as background
	// throughout: excluded from detected classes and painted black.
	ADE150 Vocabulary = "ade150"
)

// Labels returns the ordered label list for a vocabulary, indexed by class
// id. The returned slice is shared; callers must not modify it. Unknown
// vocabularies return nil.
func Labels(v Vocabulary) []string {
	switch v {
	case COCO21:
		return coco21Labels
	case ADE150:
		return ade150Labels
	default:
		return nil
	}
}

// NumClasses returns the class count for a vocabulary, 0 if unknown.
func NumClasses(v Vocabulary) int {
	switch v {
	case COCO21:
		return len(coco21Labels)
	case ADE150:
		return len(ade150Labels)
	default:
		return 0
	}
}
