package inputval

import (
	"testing"
)

func TestIsValidViewMode(t *testing.T) {
	tests := []struct {
		mode string
		want bool
	}{
		{"lines", true},
		{"area", true},
		{"AREA", true},
		{" lines ", true},
		{"bars", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			if got := IsValidViewMode(tt.mode); got != tt.want {
				t.Errorf("IsValidViewMode(%q) = %v, want %v", tt.mode, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "507f1f77bcf86cd799439011", true},
		{"padded", "  507f1f77bcf86cd799439011  ", true},
		{"too short", "507f1f77", false},
		{"not hex", "zzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidObjectID(tt.id); got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name string `validate:"required,max=80" label:"Name"`
		Mode string `validate:"required,viewmode" label:"View mode"`
	}

	tests := []struct {
		name      string
		input     TestInput
		wantError bool
	}{
		{
			name:      "valid input",
			input:     TestInput{Name: "Asia 2010", Mode: "area"},
			wantError: false,
		},
		{
			name:      "missing name",
			input:     TestInput{Name: "", Mode: "lines"},
			wantError: true,
		},
		{
			name:      "missing mode",
			input:     TestInput{Name: "Asia", Mode: ""},
			wantError: true,
		},
		{
			name:      "invalid mode",
			input:     TestInput{Name: "Asia", Mode: "pie"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if tt.wantError && !result.HasErrors() {
				t.Errorf("Validate() expected errors, got none")
			}
			if !tt.wantError && result.HasErrors() {
				t.Errorf("Validate() expected no errors, got: %s", result.First())
			}
		})
	}
}

func TestResult_First(t *testing.T) {
	r := &Result{}
	if got := r.First(); got != "" {
		t.Errorf("First() on empty result = %q, want empty string", got)
	}

	r = &Result{
		Errors: []FieldError{
			{Field: "name", Label: "Name", Message: "Name is required."},
			{Field: "mode", Label: "View mode", Message: "View mode is required."},
		},
	}
	if got := r.First(); got != "Name is required." {
		t.Errorf("First() = %q, want %q", got, "Name is required.")
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{}
	if got := r.All(); got != "" {
		t.Errorf("All() on empty result = %q, want empty string", got)
	}

	r = &Result{
		Errors: []FieldError{
			{Field: "name", Label: "Name", Message: "Name is required."},
			{Field: "mode", Label: "View mode", Message: "View mode is required."},
		},
	}
	want := "Name is required.; View mode is required."
	if got := r.All(); got != want {
		t.Errorf("All() = %q, want %q", got, want)
	}
}

func TestResult_Fields(t *testing.T) {
	type TestInput struct {
		Name string `validate:"required,max=80" label:"Name"`
		Mode string `validate:"required,viewmode" label:"View mode"`
	}
	fields := Validate(TestInput{Mode: "pie"}).Fields()
	if len(fields) != 2 {
		t.Fatalf("Fields() = %v, want 2 entries", fields)
	}
	if fields["name"] == "" || fields["mode"] == "" {
		t.Errorf("Fields() = %v, want name and mode", fields)
	}
	if got := Validate(TestInput{Name: "Asia", Mode: "area"}).Fields(); len(got) != 0 {
		t.Errorf("Fields() on valid input = %v", got)
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type YearInput struct {
		Year int `validate:"year" label:"Year"`
	}

	if result := Validate(YearInput{Year: 2010}); result.HasErrors() {
		t.Errorf("Validate() year=2010 should be valid, got: %s", result.First())
	}
	if result := Validate(YearInput{Year: 20100}); !result.HasErrors() {
		t.Error("Validate() year=20100 should fail")
	}

	type IDInput struct {
		ID string `validate:"required,objectid" label:"View"`
	}

	if result := Validate(IDInput{ID: "507f1f77bcf86cd799439011"}); result.HasErrors() {
		t.Errorf("Validate() objectid should be valid, got: %s", result.First())
	}
	result := Validate(IDInput{ID: "invalid-id"})
	if !result.HasErrors() {
		t.Fatal("Validate() objectid=invalid should fail")
	}
	if result.First() != "View is not a valid ID." {
		t.Errorf("message = %q", result.First())
	}
}

func TestValidate_ViewModeMessage(t *testing.T) {
	type Input struct {
		Mode string `json:"mode" validate:"viewmode" label:"View mode"`
	}

	result := Validate(Input{Mode: "bars"})
	if result.First() != "View mode must be one of: lines, area." {
		t.Errorf("message = %q", result.First())
	}
}

func TestValidate_PointerStruct(t *testing.T) {
	type Input struct {
		Name string `validate:"required" label:"Name"`
	}

	input := &Input{Name: "test"}
	result := Validate(input)
	if result.HasErrors() {
		t.Errorf("Validate() pointer struct should work, got: %s", result.First())
	}
}

func TestValidate_NonStruct(t *testing.T) {
	result := Validate("not a struct")
	if result == nil {
		t.Error("Validate() non-struct should return non-nil result")
	}
}

func TestValidate_NoLabel(t *testing.T) {
	type Input struct {
		Name string `validate:"required"`
	}

	result := Validate(Input{Name: ""})
	if !result.HasErrors() {
		t.Error("Validate() empty Name should fail")
	}
	if result.First() != "Name is required." {
		t.Errorf("Validate() error message = %q, want field name message", result.First())
	}
}
