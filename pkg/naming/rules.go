package naming

import (
	"slices"
	"strings"

	log "github.com/weaveworks/marketplace-publisher/pkg/log"
)

// Fixed logical names shared by images that appear in several charts.
const (
	KubeRbacProxy = "kubeRbacProxy"
	UIServer      = "uiServer"
)

// Rule maps an image field to a fixed logical name when Match reports true.
// Rules with a higher Priority are evaluated first.
type Rule struct {
	Name        string
	Description string
	Priority    int
	Match       func(fieldText string) bool
}

// ContainsAny returns a matcher reporting whether the field text contains any of needles.
func ContainsAny(needles ...string) func(string) bool {
	return func(text string) bool {
		for _, n := range needles {
			if strings.Contains(text, n) {
				return true
			}
		}
		return false
	}
}

// DefaultRules are the override rules applied to every image field.
var DefaultRules = []Rule{
	{
		Name:        KubeRbacProxy,
		Description: "kube-rbac-proxy sidecar shared by the controller charts",
		Priority:    20,
		Match:       ContainsAny("kube-rbac-proxy", KubeRbacProxy),
	},
	{
		Name:        UIServer,
		Description: "enterprise UI server",
		Priority:    10,
		Match:       ContainsAny(UIServer, "ui-server"),
	},
}

// Resolver picks the logical name for an image field.
type Resolver struct {
	rules []Rule
}

// NewResolver returns a Resolver evaluating rules by descending priority.
// Rules of equal priority keep their given order. A nil slice selects DefaultRules.
func NewResolver(rules []Rule) *Resolver {
	if rules == nil {
		rules = DefaultRules
	}
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b Rule) int {
		return b.Priority - a.Priority
	})
	return &Resolver{rules: sorted}
}

// Rules returns the rules in evaluation order.
func (r *Resolver) Rules() []Rule {
	return slices.Clone(r.rules)
}

// Resolve returns the name of the first rule matching fieldText, or base when none does.
func (r *Resolver) Resolve(base, fieldText string) string {
	for _, rule := range r.rules {
		if rule.Match != nil && rule.Match(fieldText) {
			log.Debug("Image field matched override rule", "rule", rule.Name, "pathName", base)
			return rule.Name
		}
	}
	return base
}
