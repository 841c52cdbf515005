package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func line(id string, price string, qty int) Line {
	return Line{ProductID: id, Name: "product " + id, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestStore_AddMergesSameProduct(t *testing.T) {
	s := NewStore()
	s.Add("sess", line("p1", "9.99", 1))
	s.Add("sess", line("p1", "9.99", 2))

	items := s.Items("sess")
	if len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3 after merge, got %d", items[0].Quantity)
	}
}

func TestStore_AddDefaultsQuantityToOne(t *testing.T) {
	s := NewStore()
	s.Add("sess", line("p1", "5.00", 0))
	items := s.Items("sess")
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("expected single line with quantity 1, got %+v", items)
	}
}

func TestStore_InsertionOrderPreserved(t *testing.T) {
	s := NewStore()
	s.Add("sess", line("b", "2.00", 1))
	s.Add("sess", line("a", "1.00", 1))
	s.Add("sess", line("c", "3.00", 1))

	items := s.Items("sess")
	want := []string{"b", "a", "c"}
	for i, id := range want {
		if items[i].ProductID != id {
			t.Fatalf("expected insertion order %v, got %+v", want, items)
		}
	}
}

func TestStore_DecrementAtOneRemovesLine(t *testing.T) {
	s := NewStore()
	s.Add("sess", line("p1", "4.50", 1))
	s.UpdateQuantity("sess", "p1", -1)

	if items := s.Items("sess"); len(items) != 0 {
		t.Fatalf("expected line removed at quantity zero, got %+v", items)
	}
}

func TestStore_UpdateQuantityUnknownProductIsNoop(t *testing.T) {
	s := NewStore()
	s.Add("sess", line("p1", "4.50", 2))
	s.UpdateQuantity("sess", "missing", -1)

	items := s.Items("sess")
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected cart untouched, got %+v", items)
	}
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	s := NewStore()
	s.Remove("sess", "missing")
	if items := s.Items("sess"); len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestStore_QuantityNeverBelowOne(t *testing.T) {
	s := NewStore()
	s.Add("sess", line("p1", "1.00", 3))
	s.UpdateQuantity("sess", "p1", -5)

	if items := s.Items("sess"); len(items) != 0 {
		t.Fatalf("expected removal instead of negative quantity, got %+v", items)
	}
}

func TestStore_TotalEqualsLiteralSum(t *testing.T) {
	s := NewStore()
	s.Add("sess", line("p1", "0.10", 3))
	s.Add("sess", line("p2", "19.99", 2))
	s.UpdateQuantity("sess", "p1", 1)
	s.Remove("sess", "p2")
	s.Add("sess", line("p3", "2.50", 1))

	// surviving lines: p1 x4 @0.10, p3 x1 @2.50
	want := decimal.RequireFromString("2.90")
	if got := s.Total("sess"); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}

	// recomputed from lines, so it matches their literal sum exactly
	sum := decimal.Zero
	for _, l := range s.Items("sess") {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if !sum.Equal(s.Total("sess")) {
		t.Fatalf("total %s drifted from line sum %s", s.Total("sess"), sum)
	}
}

func TestStore_ClearEmptiesOnlyThatSession(t *testing.T) {
	s := NewStore()
	s.Add("a", line("p1", "1.00", 1))
	s.Add("b", line("p2", "2.00", 1))
	s.Clear("a")

	if items := s.Items("a"); len(items) != 0 {
		t.Fatalf("expected session a cleared, got %+v", items)
	}
	if items := s.Items("b"); len(items) != 1 {
		t.Fatalf("expected session b untouched, got %+v", items)
	}
	if !s.Total("a").Equal(decimal.Zero) {
		t.Fatalf("expected zero total after clear, got %s", s.Total("a"))
	}
}
