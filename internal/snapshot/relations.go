package snapshot

import (
	"slices"

	"github.com/osallek/osa-extractor/internal/game"
)

// byTag indexes relations by the tag of one of their sides.
type byTag map[string][]game.Relation

func index(rels []game.Relation) (from, to byTag) {
	from, to = make(byTag), make(byTag)
	for _, r := range rels {
		from[r.First] = append(from[r.First], r)
		to[r.Second] = append(to[r.Second], r)
	}
	return from, to
}

func (b byTag) seconds(tag string) []string {
	var r []string
	for _, rel := range b[tag] {
		r = append(r, rel.Second)
	}
	return r
}

func (b byTag) firsts(tag string) []string {
	var r []string
	for _, rel := range b[tag] {
		r = append(r, rel.First)
	}
	return r
}

// relations is the diplomacy of a save, indexed for country projection.
type relations struct {
	alliancesFrom, alliancesTo       byTag
	guaranteesFrom, guaranteesTo     byTag
	marriagesFrom, marriagesTo       byTag
	subsidiesFrom, subsidiesTo       byTag
	knowledgeFrom, knowledgeTo       byTag
	independenceFrom, independenceTo byTag
	tradePowersFrom, tradePowersTo   byTag
	reparationsFrom, reparationsTo   byTag
	warningsFrom, warningsTo         byTag
	wars                             []game.War
}

func newRelations(s *game.Save) relations {
	var r relations
	d := s.Diplomacy
	r.alliancesFrom, r.alliancesTo = index(d.Alliances)
	r.guaranteesFrom, r.guaranteesTo = index(d.Guarantees)
	r.marriagesFrom, r.marriagesTo = index(d.RoyalMarriages)
	r.subsidiesFrom, r.subsidiesTo = index(d.Subsidies)
	r.knowledgeFrom, r.knowledgeTo = index(d.KnowledgeSharing)
	r.independenceFrom, r.independenceTo = index(d.SupportIndependence)
	r.tradePowersFrom, r.tradePowersTo = index(d.TransferTradePowers)
	r.reparationsFrom, r.reparationsTo = index(d.WarReparations)
	r.warningsFrom, r.warningsTo = index(d.Warnings)
	r.wars = s.Wars
	return r
}

// fill sets the relations of c, seen from its own side.
func (r relations) fill(c *Country) {
	tag := c.Tag

	c.Alliances = sortedSet(r.alliancesFrom.seconds(tag), r.alliancesTo.firsts(tag))
	c.RoyalMarriages = sortedSet(r.marriagesFrom.seconds(tag), r.marriagesTo.firsts(tag))
	c.Guarantees = sortedSet(r.guaranteesFrom.seconds(tag))
	c.GuaranteedBy = sortedSet(r.guaranteesTo.firsts(tag))
	c.SupportIndependence = sortedSet(r.independenceFrom.seconds(tag))
	c.SupportIndependenceBy = sortedSet(r.independenceTo.firsts(tag))
	c.TransferTradePowers = sortedSet(r.tradePowersFrom.seconds(tag))
	c.TransferTradePowersBy = sortedSet(r.tradePowersTo.firsts(tag))
	c.WarReparations = sortedSet(r.reparationsFrom.seconds(tag))
	c.Warnings = sortedSet(r.warningsFrom.seconds(tag))
	c.WarningsBy = sortedSet(r.warningsTo.firsts(tag))

	// A country receives reparations from, and shares knowledge with, at most one other.
	if l := r.reparationsTo[tag]; len(l) > 0 {
		c.WarReparationsBy = l[len(l)-1].First
	}
	if l := r.knowledgeFrom[tag]; len(l) > 0 {
		c.KnowledgeSharing = l[len(l)-1].Second
	}
	if l := r.knowledgeTo[tag]; len(l) > 0 {
		c.KnowledgeSharingBy = l[len(l)-1].First
	}

	for _, rel := range r.subsidiesFrom[tag] {
		if c.Subsidies == nil {
			c.Subsidies = make(map[string]float64)
		}
		c.Subsidies[rel.Second] += rel.Amount
	}
	for _, rel := range r.subsidiesTo[tag] {
		if c.SubsidiesBy == nil {
			c.SubsidiesBy = make(map[string]float64)
		}
		c.SubsidiesBy[rel.First] += rel.Amount
	}

	var enemies []string
	for _, w := range r.wars {
		enemies = append(enemies, w.OtherSide(tag)...)
	}
	c.AtWarWith = sortedSet(enemies)
}

// sortedSet merges lists into a sorted list without duplicates, nil when empty.
func sortedSet(lists ...[]string) []string {
	var r []string
	for _, l := range lists {
		r = append(r, l...)
	}
	if len(r) == 0 {
		return nil
	}
	slices.Sort(r)
	return slices.Compact(r)
}

func diplomacy(d game.Diplomacy) Diplomacy {
	return Diplomacy{
		Alliances:           relationsOf(d.Alliances),
		Guarantees:          relationsOf(d.Guarantees),
		RoyalMarriages:      relationsOf(d.RoyalMarriages),
		Subsidies:           relationsOf(d.Subsidies),
		KnowledgeSharing:    relationsOf(d.KnowledgeSharing),
		SupportIndependence: relationsOf(d.SupportIndependence),
		TransferTradePowers: relationsOf(d.TransferTradePowers),
		WarReparations:      relationsOf(d.WarReparations),
		Warnings:            relationsOf(d.Warnings),
		Dependencies:        relationsOf(d.Dependencies),
	}
}

func relationsOf(rels []game.Relation) []Relation {
	if len(rels) == 0 {
		return nil
	}
	r := make([]Relation, 0, len(rels))
	for _, rel := range rels {
		r = append(r, Relation{First: rel.First, Second: rel.Second, StartDate: rel.Start, Amount: rel.Amount})
	}
	return r
}
