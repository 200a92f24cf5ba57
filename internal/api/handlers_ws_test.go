// Waypoint - Device Location Tracking and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/waypoint/internal/models"
	"github.com/tomtom215/waypoint/internal/websocket"
)

type wsFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, a *testAPI, query string) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(a.server.URL, "http") + "/ws" + query
	conn, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *gorillaws.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestWebSocketRejectsUnauthenticated(t *testing.T) {
	a := newTestAPI(t, testConfig())

	url := "ws" + strings.TrimPrefix(a.server.URL, "http") + "/ws"
	_, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial without token succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response = %+v, want 401", resp)
	}

	_, resp, err = gorillaws.DefaultDialer.Dial(url+"?token=not-a-jwt", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial with bad token: err = %v, resp = %+v", err, resp)
	}
}

func TestWebSocketLocationUpdatedReachesOwnerOnly(t *testing.T) {
	a := newTestAPI(t, testConfig())
	alice := a.signup(t, "alice", "alice@example.com")
	bob := a.signup(t, "bob", "bob@example.com")
	device := a.addDevice(t, alice, "TRK-001")

	aliceConn := dialWS(t, a, "?token="+alice)
	bobConn := dialWS(t, a, "?token="+bob)

	// A pong proves each client is registered with the hub.
	for _, conn := range []*gorillaws.Conn{aliceConn, bobConn} {
		if err := conn.WriteJSON(websocket.Message{Type: websocket.TypePing}); err != nil {
			t.Fatalf("write ping: %v", err)
		}
		if f := readFrame(t, conn); f.Type != websocket.TypePong {
			t.Fatalf("reply = %q, want pong", f.Type)
		}
	}

	a.expect(t, http.MethodPost, "/api/location/history/"+device.ID, alice,
		models.AddLocationRequest{Latitude: float(40.7128), Longitude: float(-74.0060), BatteryVoltage: 4.1},
		http.StatusCreated)

	f := readFrame(t, aliceConn)
	if f.Type != websocket.TypeLocationUpdated {
		t.Fatalf("type = %q, want %q", f.Type, websocket.TypeLocationUpdated)
	}
	var data models.LocationUpdatedData
	if err := json.Unmarshal(f.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.DeviceID != device.ID || data.LastLocation.Latitude != 40.7128 || data.LastLocation.Longitude != -74.0060 {
		t.Errorf("data = %+v", data)
	}

	_ = bobConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var stray wsFrame
	if err := bobConn.ReadJSON(&stray); err == nil {
		t.Errorf("bob received %q for alice's device", stray.Type)
	}
}

func TestWebSocketUpdateLocationWithActivationKey(t *testing.T) {
	a := newTestAPI(t, testConfig())
	alice := a.signup(t, "alice", "alice@example.com")
	tracker := a.signup(t, "tracker", "tracker@example.com")
	device := a.addDevice(t, alice, "TRK-001")

	conn := dialWS(t, a, "?token="+tracker)
	update := func(key string) {
		t.Helper()
		err := conn.WriteJSON(map[string]interface{}{
			"type": websocket.TypeUpdateLocation,
			"data": map[string]interface{}{
				"deviceId":       device.ID,
				"latitude":       35.6762,
				"longitude":      139.6503,
				"batteryVoltage": 3.7,
				"activationKey":  key,
			},
		})
		if err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	update("wrong-key")
	f := readFrame(t, conn)
	if f.Type != websocket.TypeError || !strings.Contains(string(f.Data), "Device not found") {
		t.Fatalf("reply = %s %s, want Device not found", f.Type, f.Data)
	}

	update("key-1234")
	if err := conn.WriteJSON(map[string]interface{}{
		"type": websocket.TypeGetDeviceLocation,
		"data": map[string]string{"deviceId": device.ID},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// The tracker does not own the device, so the lookup is refused even
	// though the keyed update was accepted.
	f = readFrame(t, conn)
	if f.Type != websocket.TypeGetDeviceLocation {
		t.Fatalf("type = %q", f.Type)
	}
	var reply models.DeviceLocationReply
	if err := json.Unmarshal(f.Data, &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Error == "" {
		t.Errorf("non-owner got location %+v", reply.LastLocation)
	}

	env := a.expect(t, http.MethodGet, "/api/device/location/"+device.ID, alice, nil, http.StatusOK)
	var resp models.DeviceLocationResponse
	decodeData(t, env, &resp)
	if resp.LastLocation == nil || resp.LastLocation.Latitude != 35.6762 {
		t.Errorf("last location = %+v", resp.LastLocation)
	}
}
