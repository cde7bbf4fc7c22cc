package validate

import "testing"

func TestSignup(t *testing.T) {
	cases := []struct {
		name, email, password string
		wantErr               bool
	}{
		{"Ana", "ana@example.com", "pw", false},
		{"", "ana@example.com", "pw", true},
		{"Ana", "", "pw", true},
		{"Ana", "not-an-email", "pw", true},
		{"Ana", "ana@example.com", "", true},
		{"  ", "ana@example.com", "pw", true},
	}
	for _, c := range cases {
		err := Signup(c.name, c.email, c.password)
		if (err != nil) != c.wantErr {
			t.Errorf("Signup(%q, %q, %q) err=%v, wantErr=%v", c.name, c.email, c.password, err, c.wantErr)
		}
	}
}
