package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Operation: "web.search"}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	engine.DenyOperation("system.command")
	req2 := Request{Operation: "system.command"}
	res2, err := engine.Evaluate(ctx, req2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
}

func TestDefaultPolicyEngine_DenyParameters(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	if err := engine.DenyParameters(`rm\s+-rf`); err != nil {
		t.Fatalf("DenyParameters failed: %v", err)
	}

	res, err := engine.Evaluate(context.Background(), Request{
		Operation:  "system.command",
		Parameters: map[string]any{"command": "rm -rf /"},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for destructive command, got %s", res.Effect)
	}

	res, err = engine.Evaluate(context.Background(), Request{
		Operation:  "system.command",
		Parameters: map[string]any{"command": "ls -la"},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow for harmless command, got %s", res.Effect)
	}

	if err := engine.DenyParameters(`([`); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}
