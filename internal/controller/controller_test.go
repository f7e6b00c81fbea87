package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PixPMusic/gopher-resolume/internal/grid"
	"github.com/PixPMusic/gopher-resolume/internal/midi"
	"github.com/PixPMusic/gopher-resolume/internal/resolume"
)

type write struct {
	x, y  int
	color midi.LEDColor
}

type fakeSurface struct {
	mu     sync.Mutex
	resets int
	writes []write
	events []midi.PadEvent
}

func (s *fakeSurface) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	return nil
}

func (s *fakeSurface) SetCell(x, y int, color midi.LEDColor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, write{x, y, color})
	return nil
}

func (s *fakeSurface) PollEvent() (midi.PadEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return midi.PadEvent{}, false
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, true
}

func (s *fakeSurface) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = 0
	s.writes = nil
}

// last returns the most recent color written to (x, y)
func (s *fakeSurface) last(x, y int) (midi.LEDColor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.writes) - 1; i >= 0; i-- {
		if s.writes[i].x == x && s.writes[i].y == y {
			return s.writes[i].color, true
		}
	}
	return midi.LEDColor{}, false
}

type sent struct {
	address string
	value   any
}

type fakeRemote struct {
	mu   sync.Mutex
	sent []sent
}

func (r *fakeRemote) Send(address string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{address, value})
	return nil
}

func (r *fakeRemote) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

func (r *fakeRemote) messages() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sent...)
}

func newTestController(t *testing.T) (*Controller, *fakeSurface, *fakeRemote) {
	t.Helper()
	s := &fakeSurface{}
	r := &fakeRemote{}
	c := New(s, r, 0)
	c.Start()
	s.clear()
	r.clear()
	return c, s, r
}

func press(c *Controller, cell grid.Cell) {
	c.HandlePress(cell.X, cell.Y, true)
	c.HandlePress(cell.X, cell.Y, false)
}

func TestStartRendersLaunchMode(t *testing.T) {
	s := &fakeSurface{}
	r := &fakeRemote{}
	c := New(s, r, 0)
	c.Start()

	if c.Mode() != ModeLaunch {
		t.Fatalf("mode = %v, want launch", c.Mode())
	}
	if s.resets != 1 {
		t.Errorf("resets = %d, want 1", s.resets)
	}
	checks := []struct {
		cell grid.Cell
		want midi.LEDColor
	}{
		{grid.LaunchButton, colorFull},
		{grid.MixerButton, colorGreen},
		{grid.LeftArrow, colorGreenDim},
		{grid.RightArrow, colorGreen},
	}
	for _, ch := range checks {
		if got, _ := s.last(ch.cell.X, ch.cell.Y); got != ch.want {
			t.Errorf("cell %v = %+v, want %+v", ch.cell, got, ch.want)
		}
	}
	if n := len(r.messages()); n != 8+8*9 {
		t.Errorf("sent %d queries, want %d", n, 8+8*9)
	}
}

func launchQueries(offset int) map[string]bool {
	want := make(map[string]bool)
	for layer := 1; layer <= 8; layer++ {
		want[fmt.Sprintf("/composition/layers/%d/clear", layer)] = true
		for column := offset; column <= offset+8; column++ {
			want[fmt.Sprintf("/composition/layers/%d/clips/%d/connected", layer, column)] = true
		}
	}
	return want
}

func TestLaunchRefresh(t *testing.T) {
	for _, offset := range []int{0, 5} {
		t.Run(fmt.Sprintf("offset %d", offset), func(t *testing.T) {
			c, _, r := newTestController(t)
			c.mu.Lock()
			c.launch.refresh(offset)
			c.mu.Unlock()

			want := launchQueries(offset)
			clears, clips := 0, 0
			got := make(map[string]bool)
			for _, m := range r.messages() {
				if m.value != resolume.Query {
					t.Errorf("%s sent %v, want query", m.address, m.value)
				}
				if !want[m.address] {
					t.Errorf("unexpected address %s", m.address)
					continue
				}
				switch {
				case strings.HasSuffix(m.address, "/clear"):
					clears++
				case strings.HasSuffix(m.address, "/connected"):
					clips++
				}
				got[m.address] = true
			}
			if clears != 8 || clips != 72 {
				t.Errorf("clears = %d, clips = %d; want 8, 72", clears, clips)
			}
			if len(got) != len(want) {
				t.Errorf("distinct addresses = %d, want %d", len(got), len(want))
			}
			for a := range want {
				if !got[a] {
					t.Errorf("missing query %s", a)
				}
			}
		})
	}
}

func TestSwitchModeIdempotent(t *testing.T) {
	c, s, r := newTestController(t)

	c.SwitchMode(ModeLaunch)
	press(c, grid.LaunchButton)

	if s.resets != 0 || len(s.writes) != 0 {
		t.Errorf("display touched: resets=%d writes=%d", s.resets, len(s.writes))
	}
	if n := len(r.messages()); n != 0 {
		t.Errorf("sent %d messages, want 0", n)
	}
}

func TestSwitchToMixer(t *testing.T) {
	c, s, r := newTestController(t)

	press(c, grid.MixerButton)

	if c.Mode() != ModeMixer {
		t.Fatalf("mode = %v, want mixer", c.Mode())
	}
	if s.resets != 1 {
		t.Errorf("resets = %d, want 1", s.resets)
	}
	if got, _ := s.last(grid.MixerButton.X, grid.MixerButton.Y); got != colorFull {
		t.Errorf("mixer button = %+v, want full", got)
	}
	if got, _ := s.last(grid.LaunchButton.X, grid.LaunchButton.Y); got != colorGreen {
		t.Errorf("launch button = %+v, want green", got)
	}
	if _, ok := s.last(grid.LeftArrow.X, grid.LeftArrow.Y); ok {
		t.Error("arrows drawn in mixer mode")
	}

	msgs := r.messages()
	if len(msgs) != 16 {
		t.Fatalf("sent %d queries, want 16", len(msgs))
	}
	for _, m := range msgs {
		msg, ok := resolume.ParseAddress(m.address)
		if !ok || (msg.Kind != resolume.KindLayerBypassed && msg.Kind != resolume.KindLayerOpacity) || m.value != resolume.Query {
			t.Errorf("unexpected mixer query %s = %v", m.address, m.value)
		}
	}

	// and back again
	r.clear()
	press(c, grid.LaunchButton)
	if c.Mode() != ModeLaunch {
		t.Fatalf("mode = %v, want launch", c.Mode())
	}
	if n := len(r.messages()); n != 80 {
		t.Errorf("sent %d queries on return to launch, want 80", n)
	}
}

func TestScrollOffset(t *testing.T) {
	c, s, r := newTestController(t)

	press(c, grid.LeftArrow)
	if c.ScrollOffset() != 0 {
		t.Fatalf("offset = %d after left at 0", c.ScrollOffset())
	}
	if n := len(r.messages()); n != 0 {
		t.Errorf("left at 0 sent %d messages", n)
	}
	if got, _ := s.last(grid.LeftArrow.X, grid.LeftArrow.Y); got != colorGreenDim {
		t.Errorf("left arrow = %+v, want dim", got)
	}

	for i := 0; i < 20; i++ {
		press(c, grid.RightArrow)
	}
	if c.ScrollOffset() != 20 {
		t.Fatalf("offset = %d, want 20", c.ScrollOffset())
	}
	if n := len(r.messages()); n != 20*80 {
		t.Errorf("sent %d messages, want %d", n, 20*80)
	}
	if got, _ := s.last(grid.LeftArrow.X, grid.LeftArrow.Y); got != colorGreen {
		t.Errorf("left arrow = %+v, want lit", got)
	}

	press(c, grid.LeftArrow)
	if c.ScrollOffset() != 19 {
		t.Errorf("offset = %d, want 19", c.ScrollOffset())
	}

	// releases and unmapped control buttons don't scroll
	c.HandlePress(grid.RightArrow.X, grid.RightArrow.Y, false)
	press(c, grid.UpArrow)
	press(c, grid.DownArrow)
	if c.ScrollOffset() != 19 {
		t.Errorf("offset = %d, want 19", c.ScrollOffset())
	}
}

func TestScrollSurvivesModeSwitch(t *testing.T) {
	c, _, r := newTestController(t)
	press(c, grid.RightArrow)
	press(c, grid.RightArrow)
	press(c, grid.MixerButton)
	r.clear()
	press(c, grid.LaunchButton)

	want := launchQueries(2)
	for _, m := range r.messages() {
		if !want[m.address] {
			t.Errorf("unexpected query %s for offset 2", m.address)
		}
	}
}

func TestClipUpdateWindow(t *testing.T) {
	c, s, _ := newTestController(t)

	c.ApplyClipState(3, 12, resolume.ClipRunning)
	if len(s.writes) != 0 {
		t.Fatalf("offscreen clip rendered: %+v", s.writes)
	}

	for i := 0; i < 5; i++ {
		press(c, grid.RightArrow)
	}
	s.clear()

	c.ApplyClipState(3, 12, resolume.ClipRunning)
	if len(s.writes) != 1 {
		t.Fatalf("writes = %+v, want one", s.writes)
	}
	want := write{x: 6, y: grid.RowOfLayer(3), color: colorFull}
	if s.writes[0] != want {
		t.Errorf("write = %+v, want %+v", s.writes[0], want)
	}
}

func TestClipColors(t *testing.T) {
	tests := []struct {
		state resolume.ClipState
		want  midi.LEDColor
	}{
		{resolume.ClipEmpty, colorOff},
		{resolume.ClipIdle, colorGreen},
		{resolume.ClipTransitioning, colorOff},
		{resolume.ClipRunning, colorFull},
	}
	for _, tt := range tests {
		c, s, _ := newTestController(t)
		c.ApplyClipState(1, 1, tt.state)
		if got, ok := s.last(0, 8); !ok || got != tt.want {
			t.Errorf("%v rendered %+v, want %+v", tt.state, got, tt.want)
		}
	}
}

func TestClipUpdateIgnoredInMixer(t *testing.T) {
	c, s, _ := newTestController(t)
	press(c, grid.MixerButton)
	s.clear()

	c.ApplyClipState(1, 1, resolume.ClipRunning)
	c.ApplyLayerClear(1, true)
	c.ApplyClipState(9, 1, resolume.ClipRunning)
	if len(s.writes) != 0 {
		t.Errorf("launch updates rendered in mixer: %+v", s.writes)
	}
}

func TestEndToEndClipConnected(t *testing.T) {
	c, s, _ := newTestController(t)
	d := resolume.NewDispatcher(c)

	d.Dispatch("/composition/layers/2/clips/3/connected", []any{int32(3)})

	got, ok := s.last(2, 7)
	if !ok || got != colorFull {
		t.Errorf("cell (2, 7) = %+v (written %v), want %+v", got, ok, colorFull)
	}
	if len(s.writes) != 1 {
		t.Errorf("writes = %+v, want exactly one", s.writes)
	}
}

func TestLaunchPresses(t *testing.T) {
	c, _, r := newTestController(t)
	press(c, grid.RightArrow)
	press(c, grid.RightArrow)
	r.clear()

	// bottom-left pad: layer 1, first visible column
	press(c, grid.Cell{X: 0, Y: 8})
	// top row side button: clear layer 8, down then up
	press(c, grid.Cell{X: 8, Y: 1})

	want := []sent{
		{"/composition/layers/1/clips/3/connect", 1},
		{"/composition/layers/8/clear", 1},
		{"/composition/layers/8/clear", 0},
	}
	got := r.messages()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("sent %v, want %v", got, want)
	}
}

func TestLayerClearRender(t *testing.T) {
	c, s, _ := newTestController(t)

	c.ApplyLayerClear(2, true)
	if got, _ := s.last(8, 7); got != colorRedDim {
		t.Errorf("clear=true rendered %+v", got)
	}
	c.ApplyLayerClear(2, false)
	if got, _ := s.last(8, 7); got != colorRed {
		t.Errorf("clear=false rendered %+v", got)
	}
}

func TestBypassToggle(t *testing.T) {
	c, _, r := newTestController(t)
	press(c, grid.MixerButton)
	r.clear()

	bypassCell := grid.Cell{X: 8, Y: grid.RowOfLayer(4)}
	press(c, bypassCell)
	want := []sent{{"/composition/layers/4/bypassed", 1}}
	if got := r.messages(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}

	// mirror only changes when Resolume confirms
	r.clear()
	press(c, bypassCell)
	if got := r.messages(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("unconfirmed toggle sent %v, want %v", got, want)
	}

	c.ApplyLayerBypass(4, true)
	r.clear()
	press(c, bypassCell)
	want = []sent{{"/composition/layers/4/bypassed", 0}}
	if got := r.messages(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("sent %v, want %v", got, want)
	}
}

func TestBypassMirroredInLaunchMode(t *testing.T) {
	c, s, _ := newTestController(t)

	c.ApplyLayerBypass(6, true)
	if !c.Bypassed(6) {
		t.Error("bypass mirror not updated in launch mode")
	}
	if len(s.writes) != 0 {
		t.Errorf("bypass rendered in launch mode: %+v", s.writes)
	}

	press(c, grid.MixerButton)
	c.ApplyLayerBypass(6, true)
	if got, _ := s.last(8, grid.RowOfLayer(6)); got != colorRed {
		t.Errorf("bypass rendered %+v, want red", got)
	}
	c.ApplyLayerBypass(6, false)
	if got, _ := s.last(8, grid.RowOfLayer(6)); got != colorRedDim {
		t.Errorf("bypass rendered %+v, want dim red", got)
	}

	c.ApplyLayerBypass(0, true)
	c.ApplyLayerBypass(9, true)
	if c.Bypassed(0) || c.Bypassed(9) {
		t.Error("out-of-range layer reported bypassed")
	}
}

func TestOpacity(t *testing.T) {
	c, s, r := newTestController(t)

	c.ApplyLayerOpacity(1, 0.5)
	if len(s.writes) != 0 {
		t.Fatalf("opacity rendered in launch mode")
	}

	press(c, grid.MixerButton)
	r.clear()
	s.clear()

	for x := 0; x < 8; x++ {
		press(c, grid.Cell{X: x, Y: grid.RowOfLayer(1)})
	}
	msgs := r.messages()
	if len(msgs) != 8 {
		t.Fatalf("sent %d, want 8", len(msgs))
	}
	for x, m := range msgs {
		if m.address != "/composition/layers/1/video/opacity" {
			t.Errorf("address %s", m.address)
		}
		level := m.value.(float64)
		if level != float64(x+1)/8 {
			t.Errorf("segment %d sent %v", x, level)
		}

		// feeding the sent level back lights x+1 segments
		s.clear()
		c.ApplyLayerOpacity(1, level)
		lit := 0
		for _, w := range s.writes {
			if w.y != 8 {
				t.Errorf("write on row %d", w.y)
			}
			if w.color == colorGreen {
				lit++
			}
		}
		if len(s.writes) != 8 || lit != x+1 {
			t.Errorf("level %v: %d writes, %d lit; want 8, %d", level, len(s.writes), lit, x+1)
		}
	}

	s.clear()
	c.ApplyLayerOpacity(3, 0.99)
	for x := 0; x < 8; x++ {
		want := colorGreen
		if x >= 7 {
			want = colorOff
		}
		if got, _ := s.last(x, grid.RowOfLayer(3)); got != want {
			t.Errorf("0.99 segment %d = %+v, want %+v", x, got, want)
		}
	}
}

func TestRunDrainsEvents(t *testing.T) {
	s := &fakeSurface{}
	r := &fakeRemote{}
	c := New(s, r, 0)
	c.Start()
	r.clear()

	s.events = []midi.PadEvent{
		{X: 7, Y: 0, Pressed: true},
		{X: 7, Y: 0, Pressed: false},
		{X: 0, Y: 1, Pressed: true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if c.Mode() != ModeMixer {
		t.Errorf("mode = %v, want mixer", c.Mode())
	}
	msgs := r.messages()
	if len(msgs) != 17 {
		t.Fatalf("sent %d messages, want 16 queries + 1 opacity", len(msgs))
	}
	if last := msgs[16]; last.address != "/composition/layers/8/video/opacity" || last.value != 0.125 {
		t.Errorf("last message = %v", last)
	}
	if _, ok := s.PollEvent(); ok {
		t.Error("events left undrained")
	}
}

func TestInvalidCellsIgnored(t *testing.T) {
	c, s, r := newTestController(t)
	c.HandlePress(9, 1, true)
	c.HandlePress(-1, 0, true)
	c.HandlePress(0, 9, true)
	if len(s.writes) != 0 || len(r.messages()) != 0 {
		t.Error("out-of-range press had an effect")
	}
}

func TestConcurrentUpdates(t *testing.T) {
	c, _, _ := newTestController(t)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			press(c, grid.LaunchButton)
			press(c, grid.RightArrow)
			press(c, grid.MixerButton)
			press(c, grid.Cell{X: 8, Y: 1 + i%8})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			layer := 1 + i%8
			c.ApplyClipState(layer, i%20, resolume.ClipState(i%4))
			c.ApplyLayerOpacity(layer, float64(i%9)/8)
			c.ApplyLayerBypass(layer, i%2 == 0)
			c.ApplyLayerClear(layer, i%3 == 0)
		}
	}()
	wg.Wait()

	if c.ScrollOffset() != 200 {
		t.Errorf("offset = %d, want 200", c.ScrollOffset())
	}
}

func TestFanout(t *testing.T) {
	a, b := &fakeSurface{}, &fakeSurface{}
	b.events = []midi.PadEvent{{X: 1, Y: 2, Pressed: true}}
	f := Fanout{a, b}

	f.Reset()
	f.SetCell(3, 4, colorRed)
	for _, s := range []*fakeSurface{a, b} {
		if s.resets != 1 || len(s.writes) != 1 {
			t.Errorf("surface got resets=%d writes=%d", s.resets, len(s.writes))
		}
	}

	ev, ok := f.PollEvent()
	if !ok || ev != (midi.PadEvent{X: 1, Y: 2, Pressed: true}) {
		t.Errorf("PollEvent = %+v, %v", ev, ok)
	}
	if _, ok := f.PollEvent(); ok {
		t.Error("PollEvent returned a second event")
	}
}

func TestViewChangeNotifications(t *testing.T) {
	c := New(&fakeSurface{}, &fakeRemote{}, 0)

	type view struct {
		mode   Mode
		offset int
	}
	var got []view
	c.OnViewChange(func(m Mode, offset int) { got = append(got, view{m, offset}) })

	c.Start()
	press(c, grid.RightArrow)
	press(c, grid.LeftArrow)
	press(c, grid.LeftArrow) // already at 0
	press(c, grid.LaunchButton)
	c.SwitchMode(ModeMixer)

	want := []view{
		{ModeLaunch, 0},
		{ModeLaunch, 1},
		{ModeLaunch, 0},
		{ModeMixer, 0},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("views = %v, want %v", got, want)
	}
}
