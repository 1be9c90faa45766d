package xlsx

// ReaderOption applies a configuration option to the Reader.
type ReaderOption func(*Reader)

// WithBaseDir resolves relative event workbook paths against dir.
func WithBaseDir(dir string) ReaderOption {
	return func(r *Reader) {
		r.baseDir = dir
	}
}

// WriterOption applies a configuration option to the Writer.
type WriterOption func(*Writer)

// WithTemplate sets the template workbook the output is built from. Without
// one a plain built-in layout is used.
func WithTemplate(path string) WriterOption {
	return func(w *Writer) {
		w.template = path
	}
}

// WithTemplateSheet sets the name of the sheet copied for every category.
func WithTemplateSheet(name string) WriterOption {
	return func(w *Writer) {
		if name != "" {
			w.templateSheet = name
		}
	}
}
