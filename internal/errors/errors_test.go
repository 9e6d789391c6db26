package errors

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "navigation error",
			code:    "N001",
			wantMsg: "No route matches the path",
			wantCat: CategoryNavigation,
		},
		{
			name:    "table error",
			code:    "N020",
			wantMsg: "Duplicate route path",
			wantCat: CategoryTable,
		},
		{
			name:    "config error",
			code:    "N080",
			wantMsg: "Invalid outlet.json",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "N999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "manifest.json")
	if err.Message != `file "manifest.json" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "manifest.json" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestOutletError_Error(t *testing.T) {
	err := New("N001")
	got := err.Error()
	want := "N001: No route matches the path"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Without code
	err2 := &OutletError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

func TestOutletError_WithSuggestion(t *testing.T) {
	err := New("N020").WithSuggestion("Remove the existing route first")
	if err.Suggestion != "Remove the existing route first" {
		t.Errorf("Suggestion = %q, want %q", err.Suggestion, "Remove the existing route first")
	}
}

func TestOutletError_WithExample(t *testing.T) {
	example := `table.Remove("/users/:id")
table.Add(&nav.Descriptor{Path: "/users/:id"})`
	err := New("N020").WithExample(example)
	if err.Example != example {
		t.Errorf("Example = %q, want %q", err.Example, example)
	}
}

func TestOutletError_WithDetail(t *testing.T) {
	err := New("N001").WithDetail("Custom detail")
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q, want %q", err.Detail, "Custom detail")
	}
}

func TestOutletError_Wrap(t *testing.T) {
	inner := New("N022")
	outer := New("N001").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestFromError(t *testing.T) {
	// nil error
	if FromError(nil, "N001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	// Already OutletError
	oe := New("N001")
	if FromError(oe, "N020") != oe {
		t.Error("FromError should return OutletError as-is")
	}

	// Standard error
	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "N001")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("N020").
		Wrap(&testError{msg: "underlying"}).
		WithSuggestion("Remove the existing route first").
		WithExample(`table.Remove("/users/:id")`)

	formatted := err.Format()

	if !strings.Contains(formatted, "N020") {
		t.Error("Format should contain error code")
	}
	if !strings.Contains(formatted, "Duplicate route path") {
		t.Error("Format should contain error message")
	}
	if !strings.Contains(formatted, "Caused by: underlying") {
		t.Error("Format should contain wrapped cause")
	}
	if !strings.Contains(formatted, "Hint:") {
		t.Error("Format should contain hint")
	}
	if !strings.Contains(formatted, "Example:") {
		t.Error("Format should contain example")
	}
	if !strings.Contains(formatted, "Learn more:") {
		t.Error("Format should contain doc URL")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("N001")
	compact := err.FormatCompact()

	want := "N001: No route matches the path"
	if compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("N001").WithSuggestion("register a fallback route")
	json := err.FormatJSON()

	if !strings.Contains(json, `"code":"N001"`) {
		t.Error("JSON should contain code")
	}
	if !strings.Contains(json, `"category":"navigation"`) {
		t.Error("JSON should contain category")
	}
	if !strings.Contains(json, `"message":"No route matches the path"`) {
		t.Error("JSON should contain message")
	}
	if !strings.Contains(json, `"suggestion":`) {
		t.Error("JSON should contain suggestion")
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Error("GetAllCodes() should return codes")
	}

	found := false
	for _, code := range codes {
		if code == "N001" {
			found = true
			break
		}
	}
	if !found {
		t.Error("N001 should be in the codes list")
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("N001")
	if !ok {
		t.Error("N001 should exist")
	}
	if template.Message != "No route matches the path" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("N999")
	if ok {
		t.Error("N999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("N999", ErrorTemplate{
		Category: CategoryCLI,
		Message:  "Custom test error",
		Detail:   "This is a test error",
		DocURL:   "https://outlet.dev/docs/errors/N999",
	})

	err := New("N999")
	if err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}

	// Cleanup
	delete(registry, "N999")
}

func TestWrapText(t *testing.T) {
	// Test short text that doesn't need wrapping
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	// Test text that needs wrapping
	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	// Test empty string returns empty/nil
	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	// With colors enabled
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	// With colors disabled
	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
