package input

import (
	"testing"

	"github.com/siftail/dtop/internal/core"
)

func TestTranslateQuitIsGlobalOutsideSearch(t *testing.T) {
	for _, v := range []core.ViewKind{core.ViewContainerList, core.ViewLogView, core.ViewActionMenu} {
		if _, ok := Translate("q", v).(core.QuitEvent); !ok {
			t.Fatalf("expected QuitEvent in view %v", v)
		}
	}
}

func TestTranslateQInSearchModeIsTyped(t *testing.T) {
	e, ok := Translate("q", core.ViewSearchMode).(core.SearchKeyEvent)
	if !ok || e.Key != "q" {
		t.Fatalf("expected 'q' forwarded as SearchKeyEvent in SearchMode, got %+v", e)
	}
}

func TestTranslateContainerListNavigation(t *testing.T) {
	if _, ok := Translate("down", core.ViewContainerList).(core.SelectNextEvent); !ok {
		t.Fatal("expected SelectNextEvent")
	}
	if _, ok := Translate("right", core.ViewContainerList).(core.ShowLogViewEvent); !ok {
		t.Fatal("expected ShowLogViewEvent")
	}
	if _, ok := Translate("enter", core.ViewContainerList).(core.EnterPressedEvent); !ok {
		t.Fatal("expected EnterPressedEvent")
	}
}

func TestTranslateSortFieldShortcuts(t *testing.T) {
	e, ok := Translate("c", core.ViewContainerList).(core.SetSortFieldEvent)
	if !ok || e.Field != core.SortCPU {
		t.Fatalf("expected SetSortFieldEvent{SortCPU}, got %+v", e)
	}
}

func TestTranslateLogViewExit(t *testing.T) {
	if _, ok := Translate("esc", core.ViewLogView).(core.ExitLogViewEvent); !ok {
		t.Fatal("expected ExitLogViewEvent")
	}
	if _, ok := Translate("h", core.ViewLogView).(core.ExitLogViewEvent); !ok {
		t.Fatal("expected h to behave like esc/left in LogView")
	}
}

func TestTranslateActionMenu(t *testing.T) {
	if _, ok := Translate("esc", core.ViewActionMenu).(core.CancelActionMenuEvent); !ok {
		t.Fatal("expected CancelActionMenuEvent")
	}
	if _, ok := Translate("j", core.ViewActionMenu).(core.SelectActionDownEvent); !ok {
		t.Fatal("expected SelectActionDownEvent")
	}
}

func TestTranslateUnknownKeyIsNil(t *testing.T) {
	if Translate("z", core.ViewContainerList) != nil {
		t.Fatal("expected nil for an unmapped key")
	}
}
