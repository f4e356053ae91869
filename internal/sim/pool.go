package sim

import (
	"sync"

	"github.com/san-kum/dotdrop/internal/dots"
)

// SnapshotPool recycles body snapshots of frames that are not recorded.
type SnapshotPool struct {
	pool sync.Pool
}

func NewSnapshotPool() *SnapshotPool {
	return &SnapshotPool{
		pool: sync.Pool{
			New: func() any {
				s := make([]dots.Body, 0, 16)
				return &s
			},
		},
	}
}

// GetAndCopy returns a snapshot holding a copy of every body.
func (p *SnapshotPool) GetAndCopy(bodies []*dots.Body) []dots.Body {
	dst := (*p.pool.Get().(*[]dots.Body))[:0]
	for _, b := range bodies {
		dst = append(dst, *b)
	}
	return dst
}

func (p *SnapshotPool) Put(s []dots.Body) {
	clear(s)
	s = s[:0]
	p.pool.Put(&s)
}
