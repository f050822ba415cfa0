package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"github.com/bitbill-network/ebill-core/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Node.ID != "ebill-node" {
		t.Fatalf("unexpected node id: %s", AppConfig.Node.ID)
	}
	if AppConfig.Bitcoin.Network != "mainnet" {
		t.Fatalf("unexpected bitcoin network: %s", AppConfig.Bitcoin.Network)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Relay.MaxPerSecond != 20 {
		t.Fatalf("expected MaxPerSecond 20, got %v", AppConfig.Relay.MaxPerSecond)
	}
	if AppConfig.Bitcoin.Network != "testnet" {
		t.Fatalf("expected bitcoin network override to testnet")
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("node:\n  id: sandbox\n  listen_addr: /ip4/0.0.0.0/tcp/0\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Node.ID != "sandbox" {
		t.Fatalf("expected node id sandbox, got %s", AppConfig.Node.ID)
	}
}
