package classify

// Report groups a moveset's file names by class, preserving input order.
type Report struct {
	Processable []string
	Scar        []string
	Cpr         []string
	Support     []string
	Ignored     []string
}

// Analyze classifies every name.
func (c *Classifier) Analyze(names []string) Report {
	var r Report
	for _, name := range names {
		switch c.Classify(name) {
		case ClassProcessable:
			r.Processable = append(r.Processable, name)
		case ClassPreserveScar:
			r.Scar = append(r.Scar, name)
		case ClassPreserveCpr:
			r.Cpr = append(r.Cpr, name)
		case ClassSupport:
			r.Support = append(r.Support, name)
		default:
			r.Ignored = append(r.Ignored, name)
		}
	}
	return r
}

// Assets returns the number of asset files.
func (r Report) Assets() int {
	return len(r.Processable) + len(r.Scar) + len(r.Cpr)
}

// Preserved returns the number of assets copied without processing.
func (r Report) Preserved() int {
	return len(r.Scar) + len(r.Cpr)
}

// ScarPatched reports whether the moveset ships SCAR-named assets.
func (r Report) ScarPatched() bool { return len(r.Scar) > 0 }

// CprPatched reports whether the moveset ships equip/unequip assets.
func (r Report) CprPatched() bool { return len(r.Cpr) > 0 }

// SplitCpr separates CPR files into equip and unequip lists.
func (c *Classifier) SplitCpr(names []string) (equip, unequip []string) {
	for _, name := range names {
		switch c.CprKind(name) {
		case CprUnequip:
			unequip = append(unequip, name)
		case CprEquip:
			equip = append(equip, name)
		}
	}
	return equip, unequip
}
