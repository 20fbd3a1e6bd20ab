package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joacominatel/minasql/internal/database"
)

type resultDriver struct {
	fakeDriver
	result   *database.QueryResult
	deadline bool
}

func (d *resultDriver) Execute(ctx context.Context, statement string) (*database.QueryResult, error) {
	_, d.deadline = ctx.Deadline()
	return d.result, nil
}

func TestExecuteRendersRowSet(t *testing.T) {
	drv := &resultDriver{result: &database.QueryResult{
		Columns:  []string{"id", "name"},
		Rows:     [][]string{{"1", "Al"}, {"2", "NULL"}},
		RowCount: 2,
		HasRows:  true,
	}}
	var out bytes.Buffer
	svc := NewService(drv, &out)

	if err := svc.Execute(context.Background(), "SELECT id, name FROM users"); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	want := "id | name | \n---|------|\n 1 |   Al | \n 2 | NULL | \n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
}

func TestExecuteWithoutRowSetIsSilent(t *testing.T) {
	var out bytes.Buffer
	svc := NewService(&fakeDriver{}, &out)

	if err := svc.Execute(context.Background(), "CREATE TABLE t (a int)"); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestExecuteWrapsQueryErrors(t *testing.T) {
	svc := NewService(&fakeDriver{}, &bytes.Buffer{})

	err := svc.Execute(context.Background(), "BAD SQL")
	var qe *ErrQuery
	if !errors.As(err, &qe) {
		t.Fatalf("expected *ErrQuery, got %T (%v)", err, err)
	}
	if qe.Query != "BAD SQL" {
		t.Errorf("expected the statement to be kept, got %q", qe.Query)
	}
	if !errors.Is(err, errBadSQL) {
		t.Errorf("expected the driver error to be wrapped")
	}
}

func TestConnectWrapsErrors(t *testing.T) {
	cause := errors.New("refused")
	svc := NewService(&fakeDriver{connErr: cause}, &bytes.Buffer{})

	err := svc.Connect(context.Background(), "postgres://db/app", "host=db")
	var ce *ErrConnection
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ErrConnection, got %T", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected the cause to be wrapped")
	}
}

func TestConnectAndDisconnect(t *testing.T) {
	drv := &fakeDriver{}
	svc := NewService(drv, &bytes.Buffer{})

	if err := svc.Connect(context.Background(), "fake://", ""); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if !drv.connected || svc.Target() != "fake://" || svc.DatabaseName() != "fake" {
		t.Fatalf("service did not record the connection")
	}
	if err := svc.Disconnect(); err != nil || !drv.closed {
		t.Fatalf("Disconnect did not close the driver")
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	drv := &resultDriver{result: &database.QueryResult{}}
	svc := NewService(drv, &bytes.Buffer{})

	if _, err := svc.ExecuteQuery(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("ExecuteQuery returned error: %v", err)
	}
	if drv.deadline {
		t.Fatalf("no deadline expected without a timeout")
	}

	svc.SetTimeout(time.Second)
	if _, err := svc.ExecuteQuery(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("ExecuteQuery returned error: %v", err)
	}
	if !drv.deadline {
		t.Fatalf("expected a deadline with a timeout")
	}
}
