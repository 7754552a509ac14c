package model

// indexer gives a unique index to every (section, day, interval) cell and vice versa
type indexer interface {
	// Returns a unique index in [0, sections*days*intervals)
	Index(section, day, interval uint64) uint64
	// Returns the cell's coordinates from its unique index
	Attributes(index uint64) (section, day, interval uint64)
	Cells() uint64
}

func newIndexer(sections, days, intervals uint64) indexer {
	return &indexerImplementation{
		sections:  sections,
		days:      days,
		intervals: intervals,
	}
}

type indexerImplementation struct {
	sections  uint64
	days      uint64
	intervals uint64
}

func (indexer *indexerImplementation) Index(section, day, interval uint64) uint64 {
	return interval + indexer.intervals*day + indexer.intervals*indexer.days*section
}

func (indexer *indexerImplementation) Attributes(index uint64) (section, day, interval uint64) {
	interval = index % indexer.intervals
	index = index / indexer.intervals

	day = index % indexer.days
	index = index / indexer.days

	section = index % indexer.sections

	return section, day, interval
}

func (indexer *indexerImplementation) Cells() uint64 {
	return indexer.sections * indexer.days * indexer.intervals
}
