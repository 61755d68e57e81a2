package classify

import (
	"strings"

	"golang.org/x/text/cases"

	"tidy/internal/fault"
	"tidy/internal/scan"
	"tidy/internal/textutil"
)

// VendorKeywordRule assigns files whose name contains any keyword to Group.
type VendorKeywordRule struct {
	group    string
	keywords []string
}

// NewVendorKeywordRule validates the group and keywords. The group is
// sanitized for use as a folder name; keywords are case-folded once here so
// evaluation only folds the file name.
func NewVendorKeywordRule(group string, keywords []string) (*VendorKeywordRule, error) {
	clean := textutil.FolderName(group)
	if clean == "" {
		return nil, fault.Wrap(fault.ErrConfig, "classify", "vendor rule", "group name is empty", nil)
	}
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		folded = append(folded, fold(kw))
	}
	if len(folded) == 0 {
		return nil, fault.Wrap(fault.ErrConfig, "classify", "vendor rule", "no keywords for group "+clean, nil)
	}
	return &VendorKeywordRule{group: clean, keywords: folded}, nil
}

// VendorRules builds one rule per vendor, using the vendor name as both the
// group and its only keyword. Order is preserved.
func VendorRules(vendors []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(vendors))
	for _, vendor := range vendors {
		if strings.TrimSpace(vendor) == "" {
			continue
		}
		rule, err := NewVendorKeywordRule(vendor, []string{vendor})
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return nil, fault.Wrap(fault.ErrConfig, "classify", "vendor rules", "vendor list is empty", nil)
	}
	return rules, nil
}

func (r *VendorKeywordRule) Name() string { return "vendor:" + r.group }

// Group returns the sanitized destination folder name.
func (r *VendorKeywordRule) Group() string { return r.group }

func (r *VendorKeywordRule) Evaluate(desc scan.Descriptor) (Decision, bool) {
	name := fold(desc.Name)
	for _, kw := range r.keywords {
		if strings.Contains(name, kw) {
			return Assign(r.group), true
		}
	}
	return Decision{}, false
}

// fold applies Unicode case folding. Casers carry state, so a fresh one is
// used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
