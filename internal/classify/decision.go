package classify

import (
	"fmt"
)

// Kind tags a Decision.
type Kind int

const (
	KindSkip Kind = iota
	KindAssign
	KindDuplicate
	KindRename
	// KindCreate marks a path planned by project scaffolding.
	KindCreate
)

// Skip reasons produced by this package.
const (
	ReasonNoRule          = "no rule matched"
	ReasonNoOriginal      = "no original found"
	ReasonContentDiffers  = "content differs from original"
	ReasonOriginalUnknown = "original could not be inspected"
	ReasonSameFile        = "original is the same file"
)

func (k Kind) String() string {
	switch k {
	case KindAssign:
		return "assign"
	case KindDuplicate:
		return "duplicate"
	case KindRename:
		return "rename"
	case KindCreate:
		return "create"
	default:
		return "skip"
	}
}

// MarshalText renders the kind by name in JSON reports.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Decision is what the classifier concluded about one file. Only the field
// belonging to Kind is meaningful.
type Decision struct {
	Kind Kind `json:"kind"`
	// Group is the destination folder for KindAssign.
	Group string `json:"group,omitempty"`
	// OriginalPath is the surviving sibling for KindDuplicate.
	OriginalPath string `json:"original_path,omitempty"`
	// NewName is left empty by ExtensionFilterRule; the organizer derives it
	// from the run's prefix and the file's index.
	NewName string `json:"new_name,omitempty"`
	Reason  string `json:"reason,omitempty"`
	// Rule names the rule that produced the decision.
	Rule string `json:"rule,omitempty"`
}

func Assign(group string) Decision {
	return Decision{Kind: KindAssign, Group: group}
}

func DuplicateOf(originalPath string) Decision {
	return Decision{Kind: KindDuplicate, OriginalPath: originalPath}
}

func Rename(newName string) Decision {
	return Decision{Kind: KindRename, NewName: newName}
}

func Create() Decision {
	return Decision{Kind: KindCreate}
}

func Skip(reason string) Decision {
	return Decision{Kind: KindSkip, Reason: reason}
}

func (d Decision) String() string {
	switch d.Kind {
	case KindAssign:
		return fmt.Sprintf("assign(%s)", d.Group)
	case KindDuplicate:
		return fmt.Sprintf("duplicate-of(%s)", d.OriginalPath)
	case KindRename:
		if d.NewName == "" {
			return "rename"
		}
		return fmt.Sprintf("rename(%s)", d.NewName)
	case KindCreate:
		return "create"
	default:
		return fmt.Sprintf("skip(%s)", d.Reason)
	}
}
