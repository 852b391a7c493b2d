// Package loader populates a knowledge store from a bulk-load document.
//
// Records that state an id are inserted in a first pass, raising the store's
// id counter past every explicit id in the document. Records without an id
// are queued and receive generated ids in a second pass, in file order.
package loader

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/obweb/internal/apperr"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/object"
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/wood"
)

// Directives.
const (
	DirectiveInsert        = "insert"
	DirectiveMakeReplyTree = "make_reply_tree"

	flagReportIDs = "report_ids"
)

// WarningKind classifies a non-fatal problem.
type WarningKind string

const (
	WarnUnknownDirective WarningKind = "unknown_directive"
	WarnUnknownType      WarningKind = "unknown_type"
	WarnDecode           WarningKind = "decode"
	WarnUnimplemented    WarningKind = "unimplemented"
)

// Warning is a problem that skipped a record or directive without stopping
// the load.
type Warning struct {
	Kind   WarningKind
	Record string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v: %s", w.Kind, w.Err, w.Record)
}

// Inserted describes one record that reached the store.
type Inserted struct {
	ID        oid.OID
	Tag       string
	Generated bool
	// Report is set when the record came from an insert directive that asked
	// for its ids to be reported.
	Report bool
}

// Report summarises a load.
type Report struct {
	Inserted  []Inserted
	Generated int
	Skipped   int
	Warnings  []Warning
}

// Reported returns the inserted records whose directive requested id
// reporting, in insertion order.
func (r *Report) Reported() []Inserted {
	var out []Inserted
	for _, in := range r.Inserted {
		if in.Report {
			out = append(out, in)
		}
	}
	return out
}

type pending struct {
	tag    string
	node   *wood.Wood
	report bool
}

type loader struct {
	reg    *provider.Registry
	store  *knowledge.Store
	logger *slog.Logger
	report *Report
	queue  []pending
	// claimed holds the explicit ids seen in this load.
	claimed map[oid.OID]struct{}
}

// Load applies every directive of root, a document returned by wood.Parse,
// to store. Per-record problems become warnings; the returned error is set
// only for conditions that invalidate the whole load.
func Load(root *wood.Wood, reg *provider.Registry, store *knowledge.Store, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &loader{
		reg:     reg,
		store:   store,
		logger:  logger,
		report:  &Report{},
		claimed: make(map[oid.OID]struct{}),
	}

	for _, d := range root.Contents() {
		l.directive(d)
	}
	if err := l.generate(); err != nil {
		return l.report, err
	}
	return l.report, nil
}

func (l *loader) directive(d *wood.Wood) {
	switch name := d.InitialStr(); name {
	case DirectiveInsert:
		report := reportsIDs(d)
		for _, rec := range d.Tail() {
			if rec.IsLeaf() && rec.Str() == flagReportIDs {
				continue
			}
			l.explicit(rec, report)
		}
	case DirectiveMakeReplyTree:
		l.warn(WarnUnimplemented, d, errors.New("not yet ready to build replies"))
	default:
		l.warn(WarnUnknownDirective, d, fmt.Errorf("directive %q", name))
	}
}

// reportsIDs accepts the flag either inside a header branch,
// ((insert report_ids) ...), or as a bare leaf among the records.
func reportsIDs(d *wood.Wood) bool {
	if head := d.Head(); head != nil && !head.IsLeaf() {
		for _, c := range head.Tail() {
			if c.InitialStr() == flagReportIDs {
				return true
			}
		}
	}
	for _, c := range d.Tail() {
		if c.IsLeaf() && c.Str() == flagReportIDs {
			return true
		}
	}
	return false
}

// explicit handles a record during the first pass.
func (l *loader) explicit(rec *wood.Wood, report bool) {
	tag := rec.InitialStr()
	if !l.reg.Has(tag) {
		l.warn(WarnUnknownType, rec, fmt.Errorf("type %q: %w", tag, apperr.ErrUnknownType))
		return
	}
	if rec.Seek("id") == nil {
		l.queue = append(l.queue, pending{tag: tag, node: rec, report: report})
		return
	}
	idNode, err := rec.FindVal("id")
	if err != nil {
		l.warn(WarnDecode, rec, err)
		return
	}
	id, err := oid.Dewood(idNode)
	if err != nil {
		l.warn(WarnDecode, rec, err)
		return
	}
	if _, dup := l.claimed[id]; dup {
		l.warn(WarnDecode, rec, fmt.Errorf("id %s used twice in one load: %w", id, apperr.ErrIDCollision))
		return
	}
	l.claimed[id] = struct{}{}
	l.store.Observe(id)
	l.apply(tag, rec, id, false, report)
}

// generate is the second pass.
func (l *loader) generate() error {
	for _, p := range l.queue {
		id, err := l.store.GenID()
		if err != nil {
			return fmt.Errorf("loader: %w", err)
		}
		l.apply(p.tag, p.node, id, true, p.report)
	}
	l.queue = nil
	return nil
}

func (l *loader) apply(tag string, rec *wood.Wood, id oid.OID, generated, report bool) {
	ob, err := l.reg.Dispatch(l.store, tag, rec, id)
	if err != nil {
		kind := WarnDecode
		if errors.Is(err, apperr.ErrUnknownType) {
			kind = WarnUnknownType
		}
		l.warn(kind, rec, err)
		return
	}
	l.inserted(ob, generated, report)
}

func (l *loader) inserted(ob object.Object, generated, report bool) {
	l.report.Inserted = append(l.report.Inserted, Inserted{
		ID: ob.ID(), Tag: ob.TypeTag(), Generated: generated, Report: report,
	})
	if generated {
		l.report.Generated++
	}
	l.logger.Debug("loader: inserted",
		slog.String("id", ob.ID().Token()),
		slog.String("tag", ob.TypeTag()),
		slog.Bool("generated", generated))
}

func (l *loader) warn(kind WarningKind, rec *wood.Wood, err error) {
	w := Warning{Kind: kind, Record: rec.String(), Err: err}
	l.report.Warnings = append(l.report.Warnings, w)
	if kind != WarnUnimplemented {
		l.report.Skipped++
	}
	l.logger.Warn("loader: warning",
		slog.String("kind", string(kind)),
		slog.String("record", w.Record),
		slog.String("error", err.Error()))
}
