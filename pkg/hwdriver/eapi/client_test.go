package eapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristahw/tor-hwdriver/pkg/hwdriver"
)

// fakeSwitch records the cmds of the last runCmds call and replies with
// canned per-command results.
type fakeSwitch struct {
	lastCmds []string
	results  []json.RawMessage
	status   int
	rpcErr   *rpcError
}

func newFakeSwitchServer(t *testing.T, fs *fakeSwitch) *httptest.Server {
	t.Helper()
	return httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		fs.lastCmds = req.Params.Cmds

		if fs.status != 0 && fs.status != http.StatusOK {
			w.WriteHeader(fs.status)
			return
		}

		resp := rpcResponse{Error: fs.rpcErr}
		if fs.rpcErr == nil {
			full := make([]json.RawMessage, 0, len(req.Params.Cmds))
			full = append(full, json.RawMessage(`{}`)) // enable
			full = append(full, json.RawMessage(`{}`)) // configure
			full = append(full, json.RawMessage(`{}`)) // management openstack
			if len(fs.results) > 0 {
				full = append(full, fs.results...)
			} else {
				for range req.Params.Cmds[3 : len(req.Params.Cmds)-1] {
					full = append(full, json.RawMessage(`{}`))
				}
			}
			full = append(full, json.RawMessage(`{}`)) // exit
			resp.Result = full
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server) *EAPIClient {
	t.Helper()
	host := strings.TrimPrefix(srv.URL, "https://")
	c, err := NewEAPIClient(Config{User: "admin", Pass: "pw", Host: host})
	if err != nil {
		t.Fatalf("NewEAPIClient: %v", err)
	}
	c.httpClient = srv.Client()
	return c
}

func TestNewEAPIClient_RequiresAllFields(t *testing.T) {
	cases := []Config{
		{Pass: "p", Host: "h"},
		{User: "u", Host: "h"},
		{User: "u", Pass: "p"},
	}
	for _, cfg := range cases {
		if _, err := NewEAPIClient(cfg); err == nil {
			t.Errorf("expected DriverConfigError for %+v, got nil", cfg)
		} else if _, ok := err.(*hwdriver.DriverConfigError); !ok {
			t.Errorf("expected *hwdriver.DriverConfigError, got %T", err)
		}
	}
}

func TestPlug_RendersExpectedCommands(t *testing.T) {
	fs := &fakeSwitch{}
	srv := newFakeSwitchServer(t, fs)
	defer srv.Close()
	c := newTestClient(t, srv)

	if err := c.Plug(context.Background(), "net1", 1001, "host1"); err != nil {
		t.Fatalf("Plug: %v", err)
	}

	want := []string{
		"enable", "configure", "management openstack",
		"tenant-network net1", "type vlan id 1001 host host1",
		"exit",
	}
	if strings.Join(fs.lastCmds, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %v, want %v", fs.lastCmds, want)
	}
}

func TestUnplug_RendersExpectedCommands(t *testing.T) {
	fs := &fakeSwitch{}
	srv := newFakeSwitchServer(t, fs)
	defer srv.Close()
	c := newTestClient(t, srv)

	if err := c.Unplug(context.Background(), "net1", 1001, "host1"); err != nil {
		t.Fatalf("Unplug: %v", err)
	}

	want := "tenant-network net1|no type vlan id 1001 host id host1"
	got := strings.Join(fs.lastCmds[3:5], "|")
	if got != want {
		t.Errorf("commands = %q, want %q", got, want)
	}
}

func TestDeleteNetwork_RendersExpectedCommand(t *testing.T) {
	fs := &fakeSwitch{}
	srv := newFakeSwitchServer(t, fs)
	defer srv.Close()
	c := newTestClient(t, srv)

	if err := c.DeleteNetwork(context.Background(), "net1"); err != nil {
		t.Fatalf("DeleteNetwork: %v", err)
	}
	if fs.lastCmds[3] != "no tenant-network net1" {
		t.Errorf("command = %q, want %q", fs.lastCmds[3], "no tenant-network net1")
	}
}

func TestListNetworks_ParsesAndSortsHosts(t *testing.T) {
	fs := &fakeSwitch{
		results: []json.RawMessage{json.RawMessage(`{
			"networks": {
				"net1": {"name": "net1", "segmentationId": 100, "segmentationType": "vlan", "hostId": ["zeta", "alpha", "mid"]}
			}
		}`)},
	}
	srv := newFakeSwitchServer(t, fs)
	defer srv.Close()
	c := newTestClient(t, srv)

	got, err := c.ListNetworks(context.Background())
	if err != nil {
		t.Fatalf("ListNetworks: %v", err)
	}
	net, ok := got["net1"]
	if !ok {
		t.Fatalf("missing net1 in result: %+v", got)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, h := range want {
		if net.HostID[i] != h {
			t.Errorf("HostID[%d] = %q, want %q", i, net.HostID[i], h)
		}
	}
}

func TestRunCmds_TransportFailureCollapsesToRPCError(t *testing.T) {
	fs := &fakeSwitch{status: http.StatusInternalServerError}
	srv := newFakeSwitchServer(t, fs)
	defer srv.Close()
	c := newTestClient(t, srv)

	err := c.DeleteNetwork(context.Background(), "net1")
	if err == nil {
		t.Fatal("expected error")
	}
	rpcErr, ok := err.(*hwdriver.RPCError)
	if !ok {
		t.Fatalf("expected *hwdriver.RPCError, got %T: %v", err, err)
	}
	if rpcErr.Host == "" {
		t.Error("RPCError.Host should be set")
	}
	if len(rpcErr.Commands) == 0 {
		t.Error("RPCError.Commands should be set")
	}
}

func TestRunCmds_ProtocolErrorCollapsesToRPCError(t *testing.T) {
	fs := &fakeSwitch{rpcErr: &rpcError{Code: 1000, Message: "CLI command 1 of 3 'tenant-network net1' failed"}}
	srv := newFakeSwitchServer(t, fs)
	defer srv.Close()
	c := newTestClient(t, srv)

	err := c.Plug(context.Background(), "net1", 1, "h")
	if _, ok := err.(*hwdriver.RPCError); !ok {
		t.Fatalf("expected *hwdriver.RPCError, got %T: %v", err, err)
	}
}
