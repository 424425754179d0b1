package domain

// BlockDecision represents the outcome of evaluating a query name against the deny list.
type BlockDecision struct {
	Blocked     bool   // true if the name is blocked by any rule
	MatchedRule string // rule name that matched (apex for suffix rules, the name itself for exact)
	Source      string // list file of the matched rule
	Kind        BlockRuleKind
}

// IsBlocked is a convenience accessor.
func (d BlockDecision) IsBlocked() bool { return d.Blocked }

// EmptyDecision returns a not-blocked decision.
func EmptyDecision() BlockDecision { return BlockDecision{Blocked: false} }

// DecisionFor returns the blocked decision produced by rule.
func DecisionFor(rule BlockRule) BlockDecision {
	return BlockDecision{
		Blocked:     true,
		MatchedRule: rule.Name,
		Source:      rule.Source,
		Kind:        rule.Kind,
	}
}
