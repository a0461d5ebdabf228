// Package display models the page surface the result renderer writes to: a
// hideable results region, the label element, two chart host containers, the
// recommendations list and pending user notices.
package display

import (
	"html/template"
	"sync"

	"github.com/google/uuid"
)

// Node is anything a Container can hold
type Node interface {
	NodeID() string
}

// Canvas is a drawing surface created inside a chart host. A chart instance
// draws into it and clears it again when destroyed.
type Canvas struct {
	ID string

	mu     sync.Mutex
	option template.JS
	drawn  bool
}

// NewCanvas creates an empty drawing surface with a unique id
func NewCanvas() *Canvas {
	return &Canvas{ID: "canvas-" + uuid.New().String()}
}

func (c *Canvas) NodeID() string { return c.ID }

// Draw stores the chart option the page script hands to the drawing library
func (c *Canvas) Draw(option template.JS) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.option = option
	c.drawn = true
}

// Release drops whatever was drawn
func (c *Canvas) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.option = ""
	c.drawn = false
}

// Drawn reports whether a chart currently occupies the canvas
func (c *Canvas) Drawn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawn
}

// Option returns the current chart option, empty when nothing is drawn
func (c *Canvas) Option() template.JS {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.option
}

// Bullet is one line of the recommendations list
type Bullet struct {
	Text string
}

func (b Bullet) NodeID() string { return b.Text }

// Container is an ordered list of child nodes
type Container struct {
	ID    string
	nodes []Node
}

// NewContainer creates an empty container
func NewContainer(id string) *Container {
	return &Container{ID: id}
}

// Clear removes every child
func (c *Container) Clear() {
	c.nodes = nil
}

// Append adds a child at the end
func (c *Container) Append(n Node) {
	c.nodes = append(c.nodes, n)
}

// Nodes returns a copy of the children
func (c *Container) Nodes() []Node {
	return append([]Node(nil), c.nodes...)
}

// Len returns the number of children
func (c *Container) Len() int {
	return len(c.nodes)
}

// Canvases returns the drawing surfaces among the children
func (c *Container) Canvases() []*Canvas {
	var canvases []*Canvas
	for _, n := range c.nodes {
		if canvas, ok := n.(*Canvas); ok {
			canvases = append(canvases, canvas)
		}
	}
	return canvases
}

// Bullets returns the text of every bullet child, in order
func (c *Container) Bullets() []string {
	var lines []string
	for _, n := range c.nodes {
		if bullet, ok := n.(Bullet); ok {
			lines = append(lines, bullet.Text)
		}
	}
	return lines
}

// Element is a text element with a style class
type Element struct {
	ID    string
	Text  string
	Class string
}

// Region is a section of the page that starts hidden
type Region struct {
	ID      string
	Visible bool
}

// Notifier shows a blocking message to the user
type Notifier interface {
	Notify(message string)
}

// Surface is everything the renderer can touch
type Surface struct {
	Results         *Region
	Label           *Element
	FeatureHost     *Container
	ProfileHost     *Container
	Recommendations *Container

	notifier Notifier
	notices  []string
}

// NewSurface creates a surface with the element ids the page template uses
func NewSurface() *Surface {
	return &Surface{
		Results:         &Region{ID: "result"},
		Label:           &Element{ID: "predictionResult"},
		FeatureHost:     NewContainer("featureImportance"),
		ProfileHost:     NewContainer("profileImpact"),
		Recommendations: NewContainer("recommendations"),
	}
}

// SetNotifier routes notices to n as well as queuing them for the page
func (s *Surface) SetNotifier(n Notifier) {
	s.notifier = n
}

// Notify queues a blocking notice
func (s *Surface) Notify(message string) {
	s.notices = append(s.notices, message)
	if s.notifier != nil {
		s.notifier.Notify(message)
	}
}

// Notices returns queued notices without consuming them
func (s *Surface) Notices() []string {
	return append([]string(nil), s.notices...)
}

// TakeNotices returns and clears queued notices
func (s *Surface) TakeNotices() []string {
	notices := s.notices
	s.notices = nil
	return notices
}
