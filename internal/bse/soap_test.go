package bse

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func soap12Response(resultElement, value string) string {
	return fmt.Sprintf(
		`<?xml version="1.0" encoding="utf-8"?>`+
			`<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope">`+
			`<s:Body><orderEntryParamResponse xmlns="http://bsestarmf.in/">`+
			`<%s>%s</%s>`+
			`</orderEntryParamResponse></s:Body></s:Envelope>`,
		resultElement, value, resultElement)
}

func TestExtractResult(t *testing.T) {
	t.Run("soap 1.2 envelope", func(t *testing.T) {
		raw := soap12Response(ResultOrderEntry, "0|ORDER CONFIRMED|SB1")
		got, err := ExtractResult(raw, ResultOrderEntry)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "0|ORDER CONFIRMED|SB1" {
			t.Errorf("unexpected result: %q", got)
		}
	})

	t.Run("soap 1.1 envelope", func(t *testing.T) {
		raw := `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
			`<soap:Body><getPasswordResponse xmlns="http://bsestarmf.in/">` +
			`<getPasswordResult>100|abc123</getPasswordResult>` +
			`</getPasswordResponse></soap:Body></soap:Envelope>`
		got, err := ExtractResult(raw, ResultGetPassword)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "100|abc123" {
			t.Errorf("unexpected result: %q", got)
		}
	})

	t.Run("unknown envelope namespace is rejected", func(t *testing.T) {
		raw := `<Envelope xmlns="http://example.com/not-soap">` +
			`<Body><orderEntryParamResult>0|OK</orderEntryParamResult></Body></Envelope>`
		_, err := ExtractResult(raw, ResultOrderEntry)
		if !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("expected ErrMalformedEnvelope, got %v", err)
		}
	})

	t.Run("non-envelope root is rejected", func(t *testing.T) {
		raw := `<html><body>Service Unavailable</body></html>`
		_, err := ExtractResult(raw, ResultOrderEntry)
		if !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("expected ErrMalformedEnvelope, got %v", err)
		}
	})

	t.Run("broken xml is rejected", func(t *testing.T) {
		_, err := ExtractResult("<s:Envelope", ResultOrderEntry)
		if !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("expected ErrMalformedEnvelope, got %v", err)
		}
	})

	t.Run("missing body", func(t *testing.T) {
		raw := `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"></s:Envelope>`
		_, err := ExtractResult(raw, ResultOrderEntry)
		if !errors.Is(err, ErrMissingBody) {
			t.Errorf("expected ErrMissingBody, got %v", err)
		}
	})

	t.Run("missing result element", func(t *testing.T) {
		raw := soap12Response("someOtherResult", "0|OK")
		_, err := ExtractResult(raw, ResultOrderEntry)
		if !errors.Is(err, ErrMissingResult) {
			t.Errorf("expected ErrMissingResult, got %v", err)
		}
	})
}

func TestBuildEnvelope(t *testing.T) {
	body := BuildOrderEntryBody("NEW|REF1")
	envelope := BuildEnvelope(body)

	if !strings.Contains(envelope, soap12Namespace) {
		t.Error("envelope should use SOAP 1.2 namespace")
	}
	if !strings.Contains(envelope, "<Param>NEW|REF1</Param>") {
		t.Error("envelope should contain pipe params")
	}
	if !strings.HasPrefix(envelope, `<?xml version="1.0" encoding="utf-8"?>`) {
		t.Error("envelope should start with xml declaration")
	}
}

func TestBuildBodies(t *testing.T) {
	t.Run("operation bodies carry bse namespace", func(t *testing.T) {
		bodies := map[string]string{
			"order":  BuildOrderEntryBody("a|b"),
			"switch": BuildSwitchOrderEntryBody("a|b"),
			"spread": BuildSpreadOrderEntryBody("a|b"),
		}
		for name, body := range bodies {
			if !strings.Contains(body, bseNamespace) {
				t.Errorf("%s body should carry bse namespace: %s", name, body)
			}
		}
	})

	t.Run("sip body carries token as separate element", func(t *testing.T) {
		body := BuildSIPOrderEntryBody("tok123", "REF|CLIENT")
		if !strings.Contains(body, "<Password>tok123</Password>") {
			t.Error("sip body should carry token in Password element")
		}
		if !strings.Contains(body, "<Param>REF|CLIENT</Param>") {
			t.Error("sip body should carry pipe params in Param element")
		}
	})

	t.Run("xml special characters are escaped", func(t *testing.T) {
		body := BuildGetPasswordBody("user", "member", `p<>&"w`, "key")
		if strings.Contains(body, `p<>&"w`) {
			t.Error("special characters must be escaped")
		}
		if !strings.Contains(body, "p&lt;&gt;&amp;") {
			t.Errorf("expected escaped password, got %s", body)
		}
	})
}

func TestBuildEnvelopeRoundTrip(t *testing.T) {
	// Собранный запрос проходит тот же двухстадийный разбор, что и ответ
	body := BuildOrderEntryBody("NEW|REF1||MEMBER")
	envelope := BuildEnvelope(strings.Replace(body,
		"orderEntryParam", "orderEntryParamResult", 2))

	got, err := ExtractResult(envelope, "Param")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "NEW|REF1||MEMBER" {
		t.Errorf("unexpected round-trip value: %q", got)
	}
}
