package testutil

import (
	"context"
	"fmt"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// InfluxSetup holds the credentials the InfluxDB container is initialised
// with.
type InfluxSetup struct {
	URL    string
	Org    string
	Bucket string
	Token  string
}

// StartInflux launches an InfluxDB 2.7 container in setup mode so the
// organisation, bucket and admin token exist when it is ready.
func StartInflux(ctx context.Context) (InfluxSetup, func(), error) {
	s := InfluxSetup{Org: "evroute", Bucket: "plans", Token: "evroute-test-token"}
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "admin",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "admin-password",
			"DOCKER_INFLUXDB_INIT_ORG":         s.Org,
			"DOCKER_INFLUXDB_INIT_BUCKET":      s.Bucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": s.Token,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return InfluxSetup{}, nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }
	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return InfluxSetup{}, nil, err
	}
	port, err := cont.MappedPort(ctx, "8086")
	if err != nil {
		cleanup()
		return InfluxSetup{}, nil, err
	}
	s.URL = fmt.Sprintf("http://%s:%s", host, port.Port())
	return s, cleanup, nil
}
