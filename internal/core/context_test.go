package core

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// stubModule records every lifecycle call in a shared log.
type stubModule struct {
	id   ModuleID
	log  *[]string
	errs map[string]error

	configKey string
}

func (m *stubModule) ModuleInfo() ModuleInfo {
	proto := *m
	return ModuleInfo{
		ID: m.id,
		New: func() Module {
			cp := proto
			return &cp
		},
	}
}

func (m *stubModule) step(name string) error {
	if m.log != nil {
		*m.log = append(*m.log, string(m.id)+":"+name)
	}
	return m.errs[name]
}

func (m *stubModule) Configure(node *yaml.Node) error {
	var parsed struct {
		Key string `yaml:"key"`
	}
	if err := node.Decode(&parsed); err != nil {
		return err
	}
	m.configKey = parsed.Key
	return m.step("configure")
}

func (m *stubModule) Provision(ctx *AppContext) error {
	ctx.RegisterService(string(m.id)+".key", m.configKey)
	return m.step("provision")
}

func (m *stubModule) Validate() error { return m.step("validate") }

// bareModule implements no lifecycle interface at all.
type bareModule struct{ id ModuleID }

func (m *bareModule) ModuleInfo() ModuleInfo {
	id := m.id
	return ModuleInfo{ID: id, New: func() Module { return &bareModule{id: id} }}
}

func yamlNode(t *testing.T, text string) yaml.Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("YAML parse: %v", err)
	}
	return *doc.Content[0]
}

func TestAppContext_ForModuleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	NewAppContext(logger, "").ForModule("trigger.http").Logger.Info("hello")

	if !strings.Contains(buf.String(), "module=trigger.http") {
		t.Errorf("child logger output = %q, want module attribute", buf.String())
	}
}

func TestAppContext_LoadModuleLifecycle(t *testing.T) {
	t.Cleanup(resetRegistry)

	tests := []struct {
		name     string
		errs     map[string]error
		config   string
		wantLog  []string
		wantFail bool
	}{
		{
			name:    "with config",
			config:  "key: hello",
			wantLog: []string{"test.mod:configure", "test.mod:provision", "test.mod:validate"},
		},
		{
			name:    "without config",
			wantLog: []string{"test.mod:provision", "test.mod:validate"},
		},
		{
			name:     "configure error",
			config:   "key: hello",
			errs:     map[string]error{"configure": errors.New("boom")},
			wantLog:  []string{"test.mod:configure"},
			wantFail: true,
		},
		{
			name:     "provision error",
			errs:     map[string]error{"provision": errors.New("boom")},
			wantLog:  []string{"test.mod:provision"},
			wantFail: true,
		},
		{
			name:     "validate error",
			errs:     map[string]error{"validate": errors.New("boom")},
			wantLog:  []string{"test.mod:provision", "test.mod:validate"},
			wantFail: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetRegistry()
			var log []string
			RegisterModule(&stubModule{id: "test.mod", log: &log, errs: tt.errs})

			ctx := NewAppContext(nil, "")
			if tt.config != "" {
				ctx = ctx.WithModuleConfigs(map[string]yaml.Node{"test.mod": yamlNode(t, tt.config)})
			}

			mod, err := ctx.LoadModule("test.mod")
			if tt.wantFail != (err != nil) {
				t.Fatalf("LoadModule error = %v, wantFail %v", err, tt.wantFail)
			}
			if !tt.wantFail && mod == nil {
				t.Fatal("expected a module instance")
			}
			if !slices.Equal(log, tt.wantLog) {
				t.Errorf("lifecycle = %v, want %v", log, tt.wantLog)
			}
		})
	}
}

func TestAppContext_LoadModuleUnknown(t *testing.T) {
	t.Cleanup(resetRegistry)

	if _, err := NewAppContext(nil, "").LoadModule("does.not.exist"); err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestAppContext_LoadModuleBare(t *testing.T) {
	t.Cleanup(resetRegistry)
	RegisterModule(&bareModule{id: "test.bare"})

	ctx := NewAppContext(nil, "").WithModuleConfigs(map[string]yaml.Node{
		"test.bare": yamlNode(t, "ignored: true"),
	})
	if _, err := ctx.LoadModule("test.bare"); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
}

func TestAppContext_ServicesSharedAcrossModules(t *testing.T) {
	t.Cleanup(resetRegistry)
	RegisterModule(&stubModule{id: "test.svc"})

	root := NewAppContext(nil, "").WithModuleConfigs(map[string]yaml.Node{
		"test.svc": yamlNode(t, "key: shared"),
	})
	if _, err := root.LoadModule("test.svc"); err != nil {
		t.Fatalf("LoadModule: %v", err)
	}

	got, ok := ServiceAs[string](root.ForModule("other.mod"), "test.svc.key")
	if !ok || got != "shared" {
		t.Errorf("ServiceAs = %q, %v; want shared, true", got, ok)
	}
	if _, ok := ServiceAs[int](root, "test.svc.key"); ok {
		t.Error("ServiceAs with the wrong type should report false")
	}
	if _, ok := root.Service("missing"); ok {
		t.Error("Service(missing) should report false")
	}
}

func TestAppContext_HasModuleConfig(t *testing.T) {
	ctx := NewAppContext(nil, "settings.yaml").WithModuleConfigs(map[string]yaml.Node{
		"test.mod": yamlNode(t, "key: v"),
	})
	child := ctx.ForModule("test.mod")

	if !child.HasModuleConfig("test.mod") {
		t.Error("ForModule should propagate module configs")
	}
	if child.HasModuleConfig("other") {
		t.Error("HasModuleConfig(other) = true")
	}
	if child.ConfigPath != "settings.yaml" {
		t.Errorf("ConfigPath = %q", child.ConfigPath)
	}
}
