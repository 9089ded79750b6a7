package normalize

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lower", in: "вася", want: "вася"},
		{name: "upper", in: "ВАСЯ", want: "вася"},
		{name: "spaces", in: "  Anna   Maria ", want: "anna maria"},
		{name: "composed", in: "José", want: "josé"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Name(tt.in); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}
