package history

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteOutputLevel records an applied output value.
//
// The write is non-blocking; points are batched and sent asynchronously.
// If the client is not connected the point is dropped silently, matching
// the best-effort nature of telemetry history.
//
// Parameters:
//   - deviceID: The node's device identifier
//   - keyword: The output keyword (e.g. "led")
//   - value: The applied value in the 0..1024 domain
func (c *Client) WriteOutputLevel(deviceID, keyword string, value int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"output_level",
		map[string]string{
			"device_id": deviceID,
			"output":    keyword,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
