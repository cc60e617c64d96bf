package snapshot

import (
	"context"
	"slices"
	"strings"

	"github.com/osallek/osa-extractor/internal/game"
)

// tagChange is a country taking over the provinces of another tag, or inheriting them, on a date.
type tagChange struct {
	date game.Date
	tag  string
	from string
}

// reconstructOwners extends the ownership timelines of provinces with the tag changes found in
// the history of countries.
//
// Changes are applied in (date, tag) order. A country counts as done for progress once its last
// change has been applied to every province, countries without changes being done first.
func reconstructOwners(ctx context.Context, countries []Country, provinces []Province, tags map[string]bool, progress func(done, total int)) error {
	var changes []tagChange
	for _, c := range countries {
		for _, h := range c.History {
			if strings.TrimSpace(h.ChangedTagFrom) == "" {
				continue
			}
			changes = append(changes, tagChange{date: h.Date, tag: c.Tag, from: h.ChangedTagFrom})
		}
	}
	slices.SortStableFunc(changes, func(a, b tagChange) int {
		if c := a.date.Compare(b.date); c != 0 {
			return c
		}
		return strings.Compare(a.tag, b.tag)
	})

	pending := make(map[string]int)
	for _, ch := range changes {
		pending[ch.tag]++
	}
	done := 0
	for _, c := range countries {
		if pending[c.Tag] == 0 {
			done++
			progress(done, len(countries))
		}
	}

	for _, ch := range changes {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range provinces {
			pr := &provinces[i]
			if pr.ownerAt(ch.date) == ch.from || pr.inheritedBy(ch.date, ch.tag) {
				pr.addOwner(ch.date, ch.tag, tags)
			}
		}
		if pending[ch.tag]--; pending[ch.tag] == 0 {
			done++
			progress(done, len(countries))
		}
	}
	return nil
}

// ownerAt returns the owner of the province on date, or an empty string when unknown.
func (p *Province) ownerAt(date game.Date) string {
	var tag string
	for _, o := range p.Owners {
		if o.Date.After(date) {
			break
		}
		tag = o.Tag
	}
	return tag
}

// inheritedBy reports whether the province history has tag as fake owner exactly on date.
func (p *Province) inheritedBy(date game.Date, tag string) bool {
	for _, h := range p.history {
		if h.FakeOwner == tag && h.Date.Compare(date) == 0 {
			return true
		}
	}
	return false
}

// addOwner records tag as owner from date, keeping dates strictly increasing.
// An entry on the same date is replaced. Changes to the current owner and unknown tags are ignored.
func (p *Province) addOwner(date game.Date, tag string, tags map[string]bool) {
	if !tags[tag] || p.ownerAt(date) == tag {
		return
	}

	i, found := slices.BinarySearchFunc(p.Owners, date, func(o Owner, d game.Date) int {
		return o.Date.Compare(d)
	})
	if found {
		p.Owners[i].Tag = tag
	} else {
		p.Owners = slices.Insert(p.Owners, i, Owner{Date: date, Tag: tag})
	}

	// Neighbours now holding the same tag are redundant.
	if i+1 < len(p.Owners) && p.Owners[i+1].Tag == tag {
		p.Owners = slices.Delete(p.Owners, i+1, i+2)
	}
	if i > 0 && p.Owners[i-1].Tag == tag {
		p.Owners = slices.Delete(p.Owners, i, i+1)
	}
}
