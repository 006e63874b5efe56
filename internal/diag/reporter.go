package diag

// Reporter: минимальный контракт получения диагностик.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// ReportError forwards err to r when it carries a diagnostic, or wraps it
// under fallback otherwise. Returns false when err is nil.
func ReportError(r Reporter, err error, fallback Code, path string) bool {
	if err == nil || r == nil {
		return err != nil
	}
	if de, ok := AsError(err); ok {
		d := de.Diag
		if d.Path == "" {
			d.Path = path
		}
		r.Report(d)
		return true
	}
	d := NewError(fallback, 0, err.Error())
	d.Path = path
	r.Report(d)
	return true
}
