package tui

import (
	"reflect"
	"testing"

	"github.com/csheth/cardstudio/internal/cards"
)

func TestEditorIndexClamp(t *testing.T) {
	if got := previousIndex(0); got != 0 {
		t.Fatalf("previousIndex(0) = %d", got)
	}
	if got := previousIndex(3); got != 2 {
		t.Fatalf("previousIndex(3) = %d", got)
	}
	if got := nextIndex(2, 3); got != 2 {
		t.Fatalf("nextIndex(2, 3) = %d", got)
	}
	if got := nextIndex(0, 3); got != 1 {
		t.Fatalf("nextIndex(0, 3) = %d", got)
	}
	if got := nextIndex(0, 0); got != 0 {
		t.Fatalf("nextIndex(0, 0) = %d", got)
	}
}

func TestSplitColumns(t *testing.T) {
	left, right := splitColumns(5)
	if !reflect.DeepEqual(left, []int{0, 2, 4}) || !reflect.DeepEqual(right, []int{1, 3}) {
		t.Fatalf("unexpected columns: %v %v", left, right)
	}
	left, right = splitColumns(0)
	if left != nil || right != nil {
		t.Fatalf("expected empty columns, got %v %v", left, right)
	}
}

func TestEditorPickStaysInBounds(t *testing.T) {
	card := cardsFor("cats", 1)[0]
	var e editorModel
	e.reset(0)

	steps := []struct {
		key  string
		want int
	}{
		{key: "left", want: 0},
		{key: "up", want: 0},
		{key: "right", want: 1},
		{key: "right", want: 1},
		{key: "down", want: 1},
		{key: "left", want: 0},
		{key: "down", want: 2},
		{key: "right", want: 2},
	}
	for _, step := range steps {
		e.handleKey(step.key, 0, 1, card)
		if e.pick != step.want {
			t.Fatalf("after %s pick = %d, want %d", step.key, e.pick, step.want)
		}
	}
	ev := e.handleKey("enter", 0, 1, card)
	if ev.kind != editorSelect || ev.image != 2 {
		t.Fatalf("unexpected select event: %+v", ev)
	}
}

func TestEditorIgnoresPlaceholder(t *testing.T) {
	var e editorModel
	if ev := e.handleKey("enter", 0, 1, cards.Placeholder{}); ev.kind != editorNone {
		t.Fatalf("placeholder should not produce events, got %+v", ev)
	}
	if renderEditor(cards.Placeholder{}, 0, 1, 0, 0) != "" {
		t.Fatal("placeholder should render nothing")
	}
}
