package storage

import (
	"time"

	"github.com/Soo0803/ternswipe-matcher/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Record serializers. Each exposes the Size/Marshal/Unmarshal triple of a
// mus-go serializer so the helpers in serialization.go treat them alike.
var (
	SeekerMUS    = seekerSer{}
	OfferMUS     = offerSer{}
	EmbeddingMUS = embeddingSer{}
)

// writer accumulates the encoded size of, or encodes, a sequence of fields.
// With a nil buffer it only counts bytes.
type writer struct {
	bs []byte
	n  int
}

func (w *writer) string(v string) {
	if w.bs == nil {
		w.n += ord.String.Size(v)
		return
	}
	w.n += ord.String.Marshal(v, w.bs[w.n:])
}

func (w *writer) strings(vs []string) {
	w.length(len(vs))
	for _, v := range vs {
		w.string(v)
	}
}

func (w *writer) length(v int) {
	if w.bs == nil {
		w.n += varint.PositiveInt.Size(v)
		return
	}
	w.n += varint.PositiveInt.Marshal(v, w.bs[w.n:])
}

func (w *writer) int(v int) {
	if w.bs == nil {
		w.n += varint.Int64.Size(int64(v))
		return
	}
	w.n += varint.Int64.Marshal(int64(v), w.bs[w.n:])
}

func (w *writer) uint64(v uint64) {
	if w.bs == nil {
		w.n += varint.Uint64.Size(v)
		return
	}
	w.n += varint.Uint64.Marshal(v, w.bs[w.n:])
}

func (w *writer) bool(v bool) {
	if w.bs == nil {
		w.n += ord.Bool.Size(v)
		return
	}
	w.n += ord.Bool.Marshal(v, w.bs[w.n:])
}

func (w *writer) float64(v float64) {
	if w.bs == nil {
		w.n += varint.Float64.Size(v)
		return
	}
	w.n += varint.Float64.Marshal(v, w.bs[w.n:])
}

func (w *writer) optFloat64(v *float64) {
	w.bool(v != nil)
	if v != nil {
		w.float64(*v)
	}
}

func (w *writer) vector(vs []float32) {
	w.length(len(vs))
	for _, v := range vs {
		if w.bs == nil {
			w.n += varint.Float32.Size(v)
			continue
		}
		w.n += varint.Float32.Marshal(v, w.bs[w.n:])
	}
}

// time stores a presence flag followed by microseconds since the epoch.
func (w *writer) time(t time.Time) {
	w.bool(!t.IsZero())
	if w.bs == nil {
		if !t.IsZero() {
			w.n += varint.Int64.Size(t.UnixMicro())
		}
		return
	}
	if !t.IsZero() {
		w.n += varint.Int64.Marshal(t.UnixMicro(), w.bs[w.n:])
	}
}

func (w *writer) interval(i core.Interval) {
	w.time(i.Start)
	w.time(i.End)
}

// reader decodes a sequence of fields, stopping at the first error.
type reader struct {
	bs  []byte
	n   int
	err error
}

// ok reports whether another field can be read. Every encoded field
// occupies at least one byte.
func (r *reader) ok() bool {
	if r.err != nil {
		return false
	}
	if r.n >= len(r.bs) {
		r.err = ErrTruncatedData
		return false
	}
	return true
}

func (r *reader) string() string {
	if !r.ok() {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) strings() []string {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	if l > len(r.bs)-r.n {
		r.err = ErrTruncatedData
		return nil
	}
	out := make([]string, 0, l)
	for i := 0; i < l && r.err == nil; i++ {
		out = append(out, r.string())
	}
	return out
}

func (r *reader) length() int {
	if !r.ok() {
		return 0
	}
	v, n, err := varint.PositiveInt.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int() int {
	if !r.ok() {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return int(v)
}

func (r *reader) uint64() uint64 {
	if !r.ok() {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) bool() bool {
	if !r.ok() {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) float64() float64 {
	if !r.ok() {
		return 0
	}
	v, n, err := varint.Float64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) optFloat64() *float64 {
	if !r.bool() {
		return nil
	}
	v := r.float64()
	if r.err != nil {
		return nil
	}
	return &v
}

func (r *reader) vector() []float32 {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	if l > len(r.bs)-r.n {
		r.err = ErrTruncatedData
		return nil
	}
	out := make([]float32, 0, l)
	for i := 0; i < l; i++ {
		if !r.ok() {
			return nil
		}
		v, n, err := varint.Float32.Unmarshal(r.bs[r.n:])
		r.n += n
		if err != nil {
			r.err = err
			return nil
		}
		out = append(out, v)
	}
	return out
}

func (r *reader) time() time.Time {
	if !r.bool() {
		return time.Time{}
	}
	if !r.ok() {
		return time.Time{}
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return time.UnixMicro(v).UTC()
}

func (r *reader) interval() core.Interval {
	start := r.time()
	end := r.time()
	return core.Interval{Start: start, End: end}
}

type seekerSer struct{}

func (seekerSer) write(w *writer, v core.Seeker) {
	w.string(string(v.ID))
	w.string(v.Headline)
	w.string(v.Summary)
	w.strings(v.Courses)
	w.strings(v.Skills)
	w.string(v.SkillsText)
	w.string(v.Major)
	w.int(v.WeeklyHours)
	w.interval(v.Availability)
	w.optFloat64(v.Aptitude)
	w.optFloat64(v.Reliability)
	w.bool(v.Flags.LackCommitment)
	w.bool(v.Flags.PoorCommunication)
	w.bool(v.Flags.WeakWriting)
	w.bool(v.Flags.WeakQuantitative)
	w.time(v.UpdatedAt)
}

func (s seekerSer) Size(v core.Seeker) int {
	w := &writer{}
	s.write(w, v)
	return w.n
}

func (s seekerSer) Marshal(v core.Seeker, bs []byte) int {
	w := &writer{bs: bs}
	s.write(w, v)
	return w.n
}

func (seekerSer) Unmarshal(bs []byte) (core.Seeker, int, error) {
	r := &reader{bs: bs}
	v := core.Seeker{
		ID:           core.ID(r.string()),
		Headline:     r.string(),
		Summary:      r.string(),
		Courses:      r.strings(),
		Skills:       r.strings(),
		SkillsText:   r.string(),
		Major:        r.string(),
		WeeklyHours:  r.int(),
		Availability: r.interval(),
		Aptitude:     r.optFloat64(),
		Reliability:  r.optFloat64(),
		Flags: core.BehaviorFlags{
			LackCommitment:    r.bool(),
			PoorCommunication: r.bool(),
			WeakWriting:       r.bool(),
			WeakQuantitative:  r.bool(),
		},
		UpdatedAt: r.time(),
	}
	if r.err != nil {
		return core.Seeker{}, r.n, r.err
	}
	return v, r.n, nil
}

type offerSer struct{}

func (offerSer) write(w *writer, v core.Offer) {
	w.string(string(v.ID))
	w.string(v.Title)
	w.string(v.Description)
	w.strings(v.RequiredSkills)
	w.int(v.WeeklyHours)
	w.interval(v.Period)
	w.int(v.Capacity)
	w.bool(v.Open)
	w.time(v.UpdatedAt)
}

func (s offerSer) Size(v core.Offer) int {
	w := &writer{}
	s.write(w, v)
	return w.n
}

func (s offerSer) Marshal(v core.Offer, bs []byte) int {
	w := &writer{bs: bs}
	s.write(w, v)
	return w.n
}

func (offerSer) Unmarshal(bs []byte) (core.Offer, int, error) {
	r := &reader{bs: bs}
	v := core.Offer{
		ID:             core.ID(r.string()),
		Title:          r.string(),
		Description:    r.string(),
		RequiredSkills: r.strings(),
		WeeklyHours:    r.int(),
		Period:         r.interval(),
		Capacity:       r.int(),
		Open:           r.bool(),
		UpdatedAt:      r.time(),
	}
	if r.err != nil {
		return core.Offer{}, r.n, r.err
	}
	return v, r.n, nil
}

type embeddingSer struct{}

func (embeddingSer) write(w *writer, v core.Embedding) {
	w.string(string(v.Owner))
	w.int(int(v.Kind))
	w.vector(v.Vector)
	w.uint64(v.ContentHash)
	w.string(v.Model)
	w.time(v.UpdatedAt)
}

func (s embeddingSer) Size(v core.Embedding) int {
	w := &writer{}
	s.write(w, v)
	return w.n
}

func (s embeddingSer) Marshal(v core.Embedding, bs []byte) int {
	w := &writer{bs: bs}
	s.write(w, v)
	return w.n
}

func (embeddingSer) Unmarshal(bs []byte) (core.Embedding, int, error) {
	r := &reader{bs: bs}
	v := core.Embedding{
		Owner:       core.ID(r.string()),
		Kind:        core.EntityKind(r.int()),
		Vector:      r.vector(),
		ContentHash: r.uint64(),
		Model:       r.string(),
		UpdatedAt:   r.time(),
	}
	if r.err != nil {
		return core.Embedding{}, r.n, r.err
	}
	return v, r.n, nil
}
