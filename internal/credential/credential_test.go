package credential

import (
	"fmt"
	"strings"
	"testing"
)

func TestCredential_Present(t *testing.T) {
	if Credential("").Present() {
		t.Error("empty credential should not be present")
	}
	if !Credential("sk-ant-123").Present() {
		t.Error("non-empty credential should be present")
	}
}

func TestCredential_Length(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
		want int
	}{
		{name: "absent", cred: "", want: 0},
		{name: "ascii", cred: "sk-ant-api03-abc", want: 16},
		{name: "multibyte", cred: "ключ", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cred.Length(); got != tt.want {
				t.Errorf("Length() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCredential_IsDemo(t *testing.T) {
	tests := []struct {
		cred Credential
		want bool
	}{
		{cred: "", want: true},
		{cred: "demo-mode", want: true},
		{cred: "Demo-Mode", want: false},
		{cred: "demo-mode ", want: false},
		{cred: "sk-ant-api03-abc", want: false},
	}

	for _, tt := range tests {
		if got := tt.cred.IsDemo(); got != tt.want {
			t.Errorf("Credential(%q).IsDemo() = %v, want %v", string(tt.cred), got, tt.want)
		}
	}
}

func TestCredential_Prefix(t *testing.T) {
	c := Credential("sk-ant-REDACTED")

	if got := c.Prefix(15); got != "sk-ant-api03-ab" {
		t.Errorf("Prefix(15) = %q", got)
	}
	if got := c.Prefix(100); got != string(c) {
		t.Errorf("Prefix(100) = %q, want whole value", got)
	}
	if got := c.Prefix(0); got != "" {
		t.Errorf("Prefix(0) = %q, want empty", got)
	}
	if got := Credential("ключ-доступа").Prefix(4); got != "ключ" {
		t.Errorf("Prefix on multibyte value = %q", got)
	}
}

func TestCredential_Masked(t *testing.T) {
	if got := Credential("").Masked(15); got != NotFound {
		t.Errorf("Masked on absent credential = %q, want %q", got, NotFound)
	}

	got := Credential("sk-ant-REDACTED").Masked(20)
	if got != "sk-ant-api03-abcdefg..." {
		t.Errorf("Masked(20) = %q", got)
	}
}

func TestCredential_PrefixOrNotFound(t *testing.T) {
	if got := Credential("").PrefixOrNotFound(15); got != NotFound {
		t.Errorf("got %q, want %q", got, NotFound)
	}
	if got := Credential("short").PrefixOrNotFound(15); got != "short" {
		t.Errorf("got %q, want %q", got, "short")
	}
}

func TestCredential_FormattingNeverLeaksKey(t *testing.T) {
	secret := "sk-ant-REDACTED"
	c := Credential(secret)

	for _, verb := range []string{"%v", "%s", "%#v"} {
		out := fmt.Sprintf(verb, c)
		if strings.Contains(out, secret) {
			t.Errorf("format %s leaked the full key: %q", verb, out)
		}
	}
}
