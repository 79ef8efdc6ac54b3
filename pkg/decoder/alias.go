package decoder

import "github.com/dbehnke/dmr-lc/pkg/lc"

// aliasTracker keeps the talker alias fragments of the current transmission
// on one timeslot. A new header, or any voice channel user message with a
// different source, starts over.
type aliasTracker struct {
	header   *lc.TalkerAliasHeader
	blocks   map[int]*lc.TalkerAliasBlock
	capMax   *lc.CapacityMaxTalkerAlias
	capConts []*lc.CapacityMaxTalkerAliasContinuation
	source   uint32
}

type sourced interface {
	SourceAddress() uint32
}

// observe updates the tracker and returns the alias assembled so far when
// msg is part of a talker alias, or "" otherwise.
func (a *aliasTracker) observe(msg lc.Message) string {
	if !msg.IsValid() {
		return ""
	}

	switch m := msg.(type) {
	case *lc.TalkerAliasHeader:
		a.reset()
		a.header = m
		return lc.AssembleTalkerAlias(m)
	case *lc.TalkerAliasBlock:
		if a.header == nil {
			return ""
		}
		a.blocks[m.Block()] = m
		return lc.AssembleTalkerAlias(a.header, a.sortedBlocks()...)
	case *lc.CapacityMaxTalkerAlias:
		a.reset()
		a.capMax = m
		return lc.AssembleCapacityMaxAlias(m)
	case *lc.CapacityMaxTalkerAliasContinuation:
		if a.capMax == nil {
			return ""
		}
		a.capConts = append(a.capConts, m)
		return lc.AssembleCapacityMaxAlias(a.capMax, a.capConts...)
	case sourced:
		if src := m.SourceAddress(); src != a.source {
			a.reset()
			a.source = src
		}
	}
	return ""
}

func (a *aliasTracker) reset() {
	source := a.source
	*a = aliasTracker{blocks: make(map[int]*lc.TalkerAliasBlock), source: source}
}

func (a *aliasTracker) sortedBlocks() []*lc.TalkerAliasBlock {
	var out []*lc.TalkerAliasBlock
	for n := 1; n <= 3; n++ {
		if b, ok := a.blocks[n]; ok {
			out = append(out, b)
		}
	}
	return out
}
