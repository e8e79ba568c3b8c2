package editor

import "testing"

func TestChangeProposalTracker_Add(t *testing.T) {
	tr := NewChangeProposalTracker()

	c := tr.Add("alice", Range{Start: 0, End: 5}, "Howdy")
	if c.ID == "" {
		t.Error("expected generated id")
	}
	if c.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if c.Accepted {
		t.Error("new proposal should not be accepted")
	}
	if tr.Len() != 1 {
		t.Errorf("len = %d, want 1", tr.Len())
	}
}

func TestChangeProposalTracker_Accept(t *testing.T) {
	tr := NewChangeProposalTracker()
	c := tr.Add("alice", Range{Start: 0, End: 5}, "Howdy")

	if !tr.Accept(c.ID) {
		t.Fatal("accept failed for existing id")
	}

	list := tr.List()
	if len(list) != 1 || !list[0].Accepted {
		t.Errorf("unexpected list after accept: %+v", list)
	}
}

func TestChangeProposalTracker_Reject(t *testing.T) {
	tr := NewChangeProposalTracker()
	c1 := tr.Add("alice", Range{Start: 0, End: 5}, "Howdy")
	c2 := tr.Add("bob", Range{Start: 6, End: 11}, "Earth")

	if !tr.Reject(c1.ID) {
		t.Fatal("reject failed for existing id")
	}

	list := tr.List()
	if len(list) != 1 || list[0].ID != c2.ID {
		t.Errorf("unexpected list after reject: %+v", list)
	}
}

func TestChangeProposalTracker_UnknownID(t *testing.T) {
	tr := NewChangeProposalTracker()
	tr.Add("alice", Range{Start: 0, End: 5}, "Howdy")

	if tr.Accept("nope") {
		t.Error("accept of unknown id should be a no-op")
	}
	if tr.Reject("nope") {
		t.Error("reject of unknown id should be a no-op")
	}
	if tr.Len() != 1 {
		t.Errorf("len = %d, want 1", tr.Len())
	}
}

func TestChangeProposalTracker_ListIsCopy(t *testing.T) {
	tr := NewChangeProposalTracker()
	tr.Add("alice", Range{Start: 0, End: 5}, "Howdy")

	list := tr.List()
	list[0].Accepted = true

	if tr.List()[0].Accepted {
		t.Error("mutating the returned list should not affect the tracker")
	}
}
