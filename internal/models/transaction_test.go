package models

import "testing"

func TestStageOrder(t *testing.T) {
	cases := []struct {
		stage TransactionStage
		want  int
	}{
		{StagePending, 0},
		{StageMeetingScheduled, 1},
		{StageDepositPaid, 2},
		{StageFinalSigning, 3},
		{StageCompleted, 4},
		{StageCancelled, 5},
		{FilterStageInitialContact, -1},
		{TransactionStage("BOGUS"), -1},
	}
	for _, c := range cases {
		if got := StageOrder(c.stage); got != c.want {
			t.Errorf("StageOrder(%s) = %d, want %d", c.stage, got, c.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name            string
		from, to        TransactionStage
		adminCorrection bool
		want            bool
	}{
		{"forward one step", StagePending, StageMeetingScheduled, false, true},
		{"forward skipping stages", StagePending, StageFinalSigning, false, true},
		{"forward to completed", StageFinalSigning, StageCompleted, false, true},
		{"backward without correction", StageDepositPaid, StageMeetingScheduled, false, false},
		{"backward with correction", StageDepositPaid, StageMeetingScheduled, true, true},
		{"same stage", StageDepositPaid, StageDepositPaid, false, false},
		{"cancel from pending", StagePending, StageCancelled, false, true},
		{"cancel from final signing", StageFinalSigning, StageCancelled, false, true},
		{"out of completed", StageCompleted, StageCancelled, false, false},
		{"out of completed with correction", StageCompleted, StagePending, true, false},
		{"out of cancelled", StageCancelled, StagePending, false, false},
		{"to unknown stage", StagePending, TransactionStage("BOGUS"), false, false},
		{"to filter stage", StagePending, FilterStagePropertyViewing, false, false},
		{"to filter stage with correction", StagePending, FilterStagePropertyViewing, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CanTransition(c.from, c.to, c.adminCorrection); got != c.want {
				t.Errorf("CanTransition(%s, %s, %v) = %v, want %v", c.from, c.to, c.adminCorrection, got, c.want)
			}
		})
	}
}

func TestShouldConcealBuyerInfo(t *testing.T) {
	concealed := []TransactionStage{StagePending, StageMeetingScheduled}
	for _, s := range concealed {
		if !ShouldConcealBuyerInfo(s) {
			t.Errorf("expected buyer info concealed at %s", s)
		}
	}

	visible := []TransactionStage{StageDepositPaid, StageFinalSigning, StageCompleted, StageCancelled}
	for _, s := range visible {
		if ShouldConcealBuyerInfo(s) {
			t.Errorf("expected buyer info visible at %s", s)
		}
	}
}

func TestCategoryForStage(t *testing.T) {
	cases := []struct {
		stage TransactionStage
		want  UpdateCategory
	}{
		{StagePending, CategoryAppointment},
		{StageMeetingScheduled, CategoryAppointment},
		{StageDepositPaid, CategoryPayment},
		{StageFinalSigning, CategoryContract},
		{StageCompleted, CategoryCompletion},
		{StageCancelled, CategoryGeneral},
	}
	for _, c := range cases {
		if got := CategoryForStage(c.stage); got != c.want {
			t.Errorf("CategoryForStage(%s) = %s, want %s", c.stage, got, c.want)
		}
	}
}

func TestParseTransactionStage(t *testing.T) {
	if _, err := ParseTransactionStage("MEETING_SCHEDULED"); err != nil {
		t.Fatalf("unexpected error for valid stage: %v", err)
	}
	if _, err := ParseTransactionStage("PROPERTY_VIEWING"); err == nil {
		t.Fatal("expected error for filter-only stage")
	}
	if _, err := ParseTransactionStage("nonsense"); err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestIsFilterStage(t *testing.T) {
	if !IsFilterStage(FilterStageContractSigning) {
		t.Error("CONTRACT_SIGNING should be a filter stage")
	}
	if IsFilterStage(StageDepositPaid) {
		t.Error("DEPOSIT_PAID should not be a filter stage")
	}
}
