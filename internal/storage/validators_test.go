package storage

import (
	"testing"
	"time"
)

func TestValidateMatter(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Valid matter", func(t *testing.T) {
		matter := &Matter{Title: "Standup", StartTime: start, EndTime: start.Add(time.Hour)}
		if err := ValidateMatter(matter); err != nil {
			t.Errorf("Expected no error for valid matter, got: %v", err)
		}
	})

	t.Run("Empty title should fail", func(t *testing.T) {
		matter := &Matter{Title: "  ", StartTime: start, EndTime: start}
		if err := ValidateMatter(matter); err == nil {
			t.Error("Expected error for empty title")
		}
	})

	t.Run("End before start should fail", func(t *testing.T) {
		matter := &Matter{Title: "Backwards", StartTime: start, EndTime: start.Add(-time.Minute)}
		if err := ValidateMatter(matter); err == nil {
			t.Error("Expected error for end before start")
		}
	})

	t.Run("Unknown priority should fail", func(t *testing.T) {
		matter := &Matter{Title: "Urgent", Priority: 7}
		if err := ValidateMatter(matter); err == nil {
			t.Error("Expected error for unknown priority")
		}
	})

	t.Run("Times are normalized to UTC", func(t *testing.T) {
		zone := time.FixedZone("UTC+3", 3*60*60)
		matter := &Matter{Title: "Zoned", StartTime: start.In(zone), EndTime: start.In(zone)}
		if err := ValidateMatter(matter); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if matter.StartTime.Location() != time.UTC {
			t.Errorf("Expected UTC start time, got %v", matter.StartTime.Location())
		}
	})
}

func TestIsMatterQueryField(t *testing.T) {
	for _, field := range []string{"id", "title", "type", "reserved_1", "reserved_5"} {
		if !IsMatterQueryField(field) {
			t.Errorf("Expected %q to be allowed", field)
		}
	}

	for _, field := range []string{"secret", "start_time", "reserved_6", "title; DROP TABLE matter", ""} {
		if IsMatterQueryField(field) {
			t.Errorf("Expected %q to be rejected", field)
		}
	}
}

func TestParseRepeatTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		monday  bool
		sunday  bool
		wantErr bool
	}{
		{"Daily", "daily|09:00|09:30", true, true, false},
		{"Weekday", "weekday|08:00|17:00", true, false, false},
		{"Weekend", "weekend|10:00|11:00", false, true, false},
		{"Explicit days", "0,3|07:15|07:45", false, true, false},
		{"Missing parts", "daily|09:00", false, false, true},
		{"Bad clock", "daily|9am|10am", false, false, true},
		{"Day out of range", "7|09:00|10:00", false, false, true},
		{"End before start", "daily|10:00|09:00", false, false, true},
	}

	monday := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseRepeatTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error for %q, got: %v", tt.input, err)
			}
			if rule.Matches(monday) != tt.monday {
				t.Errorf("Expected Monday match %v, got %v", tt.monday, rule.Matches(monday))
			}
			if rule.Matches(sunday) != tt.sunday {
				t.Errorf("Expected Sunday match %v, got %v", tt.sunday, rule.Matches(sunday))
			}
		})
	}
}

func TestRepeatRuleWindow(t *testing.T) {
	rule, err := ParseRepeatTime("daily|09:15|10:45")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	day := time.Date(2024, 5, 6, 18, 30, 0, 0, time.UTC)
	start, end := rule.Window(day)

	if want := time.Date(2024, 5, 6, 9, 15, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("Expected start %v, got %v", want, start)
	}
	if want := time.Date(2024, 5, 6, 10, 45, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("Expected end %v, got %v", want, end)
	}
}

func TestValidateRepeatTask(t *testing.T) {
	t.Run("Valid task", func(t *testing.T) {
		task := &RepeatTask{Title: "Stretch", RepeatTime: "weekday|15:00|15:10", Status: RepeatTaskStatusActive}
		if err := ValidateRepeatTask(task); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("Bad repeat time should fail", func(t *testing.T) {
		task := &RepeatTask{Title: "Stretch", RepeatTime: "sometimes"}
		if err := ValidateRepeatTask(task); err == nil {
			t.Error("Expected error for bad repeat time")
		}
	})

	t.Run("Unknown status should fail", func(t *testing.T) {
		task := &RepeatTask{Title: "Stretch", RepeatTime: "daily|09:00|09:10", Status: 5}
		if err := ValidateRepeatTask(task); err == nil {
			t.Error("Expected error for unknown status")
		}
	})
}

func TestValidateTagName(t *testing.T) {
	if err := ValidateTagName("work"); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if err := ValidateTagName(""); err == nil {
		t.Error("Expected error for empty tag")
	}
	if err := ValidateTagName("a/b"); err == nil {
		t.Error("Expected error for tag containing a slash")
	}
}
