package git

import "testing"

func TestParseNumstatLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   FileStat
		wantOK bool
	}{
		{
			name:   "regular change",
			line:   "12\t4\tinternal/config/config.go",
			want:   FileStat{Path: "internal/config/config.go", Change: ChangeModified, Insertions: 12, Deletions: 4},
			wantOK: true,
		},
		{
			name:   "binary change",
			line:   "-\t-\tassets/logo.png",
			want:   FileStat{Path: "assets/logo.png", Change: ChangeModified, Binary: true},
			wantOK: true,
		},
		{
			name: "brace rename",
			line: "3\t1\tinternal/{old => new}/file.go",
			want: FileStat{
				Path:       "internal/new/file.go",
				OldPath:    "internal/old/file.go",
				Change:     ChangeRenamed,
				Insertions: 3,
				Deletions:  1,
			},
			wantOK: true,
		},
		{
			name: "plain rename",
			line: "0\t0\told.go => new.go",
			want: FileStat{
				Path:    "new.go",
				OldPath: "old.go",
				Change:  ChangeRenamed,
			},
			wantOK: true,
		},
		{
			name: "rename into new directory",
			line: "0\t0\tcmd/{ => tools}/main.go",
			want: FileStat{
				Path:    "cmd/tools/main.go",
				OldPath: "cmd/main.go",
				Change:  ChangeRenamed,
			},
			wantOK: true,
		},
		{
			name:   "malformed counts",
			line:   "abc\t4\tfile.go",
			wantOK: false,
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNumstatLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("parseNumstatLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("parseNumstatLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseNumstatCountsFiles(t *testing.T) {
	out := "10\t2\ta.go\n-\t-\tb.bin\n3\t3\tc.go\n"
	stats := parseNumstat(out)
	if len(stats) != 3 {
		t.Fatalf("expected 3 stats, got %d", len(stats))
	}
}
