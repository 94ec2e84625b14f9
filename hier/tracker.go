package hier

// PathTracker maintains the structural path of the current node while a
// document is written or read. Push a name when a node starts and pop when it
// ends; Path reports where the stream currently is.
//
// Names are recorded encoded by the tracker's NameCoder, so paths match the
// node names as they appear in the document.
type PathTracker struct {
	coder   NameCoder
	names   []string
	indexes []map[string]int
	current *Path
}

// NewPathTracker creates an empty tracker positioned above the root node. A
// nil coder records names unchanged.
func NewPathTracker(coder NameCoder) *PathTracker {
	if coder == nil {
		coder = NoNameCoder{}
	}
	return &PathTracker{coder: coder, indexes: []map[string]int{{}}}
}

// PushElement records entering a node named name.
func (t *PathTracker) PushElement(name string) {
	name = t.coder.EncodeNode(name)
	depth := len(t.names)
	counts := t.indexes[depth]
	counts[name]++
	t.names = append(t.names, formatChunk(name, counts[name]))
	if len(t.indexes) > depth+1 {
		clear(t.indexes[depth+1])
	} else {
		t.indexes = append(t.indexes, map[string]int{})
	}
	t.current = nil
}

// PopElement records leaving the current node.
func (t *PathTracker) PopElement() {
	if len(t.names) == 0 {
		panic("hier: PopElement without matching PushElement")
	}
	t.names = t.names[:len(t.names)-1]
	t.current = nil
}

// Depth returns the number of open nodes.
func (t *PathTracker) Depth() int {
	return len(t.names)
}

// PeekElement returns the chunk of the i'th open node counted from the
// current one (0 is the current node).
func (t *PathTracker) PeekElement(i int) string {
	return t.names[len(t.names)-1-i]
}

// Path returns the absolute path of the current node.
func (t *PathTracker) Path() Path {
	if t.current == nil {
		chunks := make([]string, 0, len(t.names)+1)
		chunks = append(chunks, "")
		chunks = append(chunks, t.names...)
		t.current = &Path{chunks: chunks}
	}
	return *t.current
}

// PathTrackingWriter wraps a Writer and tracks the current path.
type PathTrackingWriter struct {
	w       Writer
	tracker *PathTracker
}

// NewPathTrackingWriter wraps w, reporting positions into tracker.
func NewPathTrackingWriter(w Writer, tracker *PathTracker) *PathTrackingWriter {
	return &PathTrackingWriter{w: w, tracker: tracker}
}

func (p *PathTrackingWriter) StartNode(name string) {
	p.tracker.PushElement(name)
	p.w.StartNode(name)
}

func (p *PathTrackingWriter) AddAttribute(name, value string) { p.w.AddAttribute(name, value) }
func (p *PathTrackingWriter) SetValue(text string)            { p.w.SetValue(text) }

func (p *PathTrackingWriter) EndNode() {
	p.w.EndNode()
	p.tracker.PopElement()
}

func (p *PathTrackingWriter) Flush() error       { return p.w.Flush() }
func (p *PathTrackingWriter) Close() error       { return p.w.Close() }
func (p *PathTrackingWriter) Underlying() Writer { return p.w.Underlying() }

// CurrentPath returns the path of the node being written.
func (p *PathTrackingWriter) CurrentPath() Path { return p.tracker.Path() }

// PathTrackingReader wraps a Reader and tracks the current path. The reader
// must be positioned on the root node.
type PathTrackingReader struct {
	r       Reader
	tracker *PathTracker
}

// NewPathTrackingReader wraps r, reporting positions into tracker.
func NewPathTrackingReader(r Reader, tracker *PathTracker) *PathTrackingReader {
	tracker.PushElement(r.NodeName())
	return &PathTrackingReader{r: r, tracker: tracker}
}

func (p *PathTrackingReader) HasMoreChildren() bool { return p.r.HasMoreChildren() }

func (p *PathTrackingReader) MoveDown() {
	p.r.MoveDown()
	p.tracker.PushElement(p.r.NodeName())
}

func (p *PathTrackingReader) MoveUp() {
	p.r.MoveUp()
	p.tracker.PopElement()
}

func (p *PathTrackingReader) NodeName() string                     { return p.r.NodeName() }
func (p *PathTrackingReader) Value() string                        { return p.r.Value() }
func (p *PathTrackingReader) Attribute(name string) (string, bool) { return p.r.Attribute(name) }
func (p *PathTrackingReader) AttributeNames() []string             { return p.r.AttributeNames() }
func (p *PathTrackingReader) Err() error                           { return p.r.Err() }
func (p *PathTrackingReader) Close() error                         { return p.r.Close() }
func (p *PathTrackingReader) Underlying() Reader                   { return p.r.Underlying() }

// CurrentPath returns the path of the node being read.
func (p *PathTrackingReader) CurrentPath() Path { return p.tracker.Path() }

// Copy writes the node r is positioned on, and everything below it, to w.
func Copy(r Reader, w Writer) {
	w.StartNode(r.NodeName())
	for _, name := range r.AttributeNames() {
		v, _ := r.Attribute(name)
		w.AddAttribute(name, v)
	}
	if v := r.Value(); v != "" {
		w.SetValue(v)
	}
	for r.HasMoreChildren() {
		r.MoveDown()
		Copy(r, w)
		r.MoveUp()
	}
	w.EndNode()
}
