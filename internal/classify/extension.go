package classify

import (
	"strings"

	"tidy/internal/fault"
	"tidy/internal/scan"
)

// ExtensionFilterRule selects files whose name ends with the extension,
// compared exactly and case-sensitively. No dot is added: ".jpg" and "jpg"
// are different filters.
type ExtensionFilterRule struct {
	ext string
}

func NewExtensionFilterRule(ext string) (*ExtensionFilterRule, error) {
	if strings.TrimSpace(ext) == "" {
		return nil, fault.Wrap(fault.ErrConfig, "classify", "extension rule", "extension is empty", nil)
	}
	return &ExtensionFilterRule{ext: ext}, nil
}

func (r *ExtensionFilterRule) Name() string { return "extension:" + r.ext }

func (r *ExtensionFilterRule) Evaluate(desc scan.Descriptor) (Decision, bool) {
	if !strings.HasSuffix(desc.Name, r.ext) {
		return Decision{}, false
	}
	return Rename(""), true
}
