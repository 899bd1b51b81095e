package toggle

import "testing"

func TestComment(t *testing.T) {
	tg := New("#")
	tests := []struct {
		in, want string
	}{
		{"x = 1\n", "# x = 1\n"},
		{"    spawn=Cfg(\n", "    # spawn=Cfg(\n"},
		{"\t\tx\r\n", "\t\t# x\r\n"},
		{"    # already\n", "    # already\n"},
		{"   \n", "   \n"},
		{"", ""},
		{"last", "# last"},
	}
	for _, tt := range tests {
		if got := tg.Comment(tt.in); got != tt.want {
			t.Errorf("Comment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUncomment(t *testing.T) {
	tg := New("#")
	tests := []struct {
		in, want string
	}{
		{"# x = 1\n", "x = 1\n"},
		{"    # spawn=Cfg(\n", "    spawn=Cfg(\n"},
		{"    #spawn=Cfg(\n", "    spawn=Cfg(\n"},
		{"    #   x\n", "      x\n"},
		{"    ## x\n", "    # x\n"},
		{"x = 1 # note\n", "x = 1 # note\n"},
		{"\t#\tx\r\n", "\t\tx\r\n"},
		{"\n", "\n"},
	}
	for _, tt := range tests {
		if got := tg.Uncomment(tt.in); got != tt.want {
			t.Errorf("Uncomment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tg := New("")
	for _, line := range []string{"x\n", "    usd_path=\"a\",\n", "\t)\r\n", "end"} {
		if got := tg.Uncomment(tg.Comment(line)); got != line {
			t.Errorf("Uncomment(Comment(%q)) = %q", line, got)
		}
		if !tg.IsCommented(tg.Comment(line)) {
			t.Errorf("IsCommented(Comment(%q)) = false", line)
		}
	}
}

func TestCustomMarker(t *testing.T) {
	tg := New("//")
	if got := tg.Comment("  a();\n"); got != "  // a();\n" {
		t.Errorf("Comment() = %q", got)
	}
	if got := tg.Uncomment("  // a();\n"); got != "  a();\n" {
		t.Errorf("Uncomment() = %q", got)
	}
	if tg.IsCommented("  # a();\n") {
		t.Error("IsCommented() matched a different marker")
	}
}
