// Package influxdb records report generation runs in InfluxDB.
//
// Each run becomes one inventory_report point tagged with the entry, the
// trigger and the outcome, carrying the integration and add-on counts and
// the generation time. Dashboards use it to spot installations that grew or
// reports that stopped succeeding.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WriteReport(ctx, influxdb.ReportPoint{EntryID: id, Status: "success"})
//
// Writes are synchronous. A run produces one point, so batching buys nothing
// and a returned error is easier to log than an asynchronous callback.
package influxdb
