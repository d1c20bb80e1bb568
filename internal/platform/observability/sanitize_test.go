package observability

import "testing"

func TestSanitizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/v1/cards", "/v1/cards"},
		{"/v1/cards/01J9ZB4M9Q3W5X7Y8Z0A1B2C3D", "/v1/cards/:id"},
		{"/v1/cards/01J9ZB4M9Q3W5X7Y8Z0A1B2C3D/flowers", "/v1/cards/:id/flowers"},
		{"/v1/shared/01J9ZB4M9Q3W5X7Y8Z0A1B2C3D/qr.png", "/v1/shared/:id/qr.png"},
		{"/v1/me", "/v1/me"},
	}
	for _, tc := range cases {
		if got := SanitizePath(tc.in); got != tc.want {
			t.Fatalf("SanitizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
