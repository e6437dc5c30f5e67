package reactive

import (
	"io"
	"strconv"

	"github.com/valyala/quicktemplate"
)

// WriteGraph writes the dependency registry to w, one target per block:
//
//	object#1
//	  "count" -> effect#2, computed:double
func (rt *Runtime) WriteGraph(w io.Writer) error {
	ew := &errWriter{w: w}
	qw := quicktemplate.AcquireWriter(ew)
	defer quicktemplate.ReleaseWriter(qw)
	q := qw.N()

	for _, id := range rt.registry.targetIDs() {
		q.S(rt.targetName(id))
		q.S("\n")
		for _, key := range rt.registry.keys(id) {
			q.S("  ")
			if key == iterateKey {
				q.S("<keys>")
			} else {
				q.Q(key)
			}
			q.S(" -> ")
			for i, e := range rt.registry.subscribers(dep{target: id, key: key}) {
				if i > 0 {
					q.S(", ")
				}
				q.S(e.String())
			}
			q.S("\n")
		}
	}
	return ew.err
}

// Graph is WriteGraph into a string.
func (rt *Runtime) Graph() string {
	bb := quicktemplate.AcquireByteBuffer()
	defer quicktemplate.ReleaseByteBuffer(bb)
	// ByteBuffer.Write never fails
	_ = rt.WriteGraph(bb)
	return string(bb.B)
}

func (rt *Runtime) targetName(id uint64) string {
	switch rt.byID[id].(type) {
	case *Object:
		return "object#" + strconv.FormatUint(id, 10)
	case *Array:
		return "array#" + strconv.FormatUint(id, 10)
	}
	return "released#" + strconv.FormatUint(id, 10)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}
