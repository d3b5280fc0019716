// Package painel computes the view model of the CAGED labor-market dashboard:
// formal-employment admissions, terminations and salaries by production chain,
// region and period.
//
// Usage:
//
//	src, _ := loader.NewSource("./public", loader.DefaultHTTPTimeout)
//	l := loader.New(src)
//	baseline, regions, err := l.Bootstrap(ctx)
//	dash := dashboard.New(baseline, regions)
//	l.Start(ctx, dash)
//
//	result := dash.Update(func(s *engine.FilterState) {
//	    s.SetMeso("Oeste")
//	    s.ToggleInteractive(engine.InteractiveChain, "Soja")
//	})
//
// Until the granular cube arrives the engine answers from the pre-aggregated
// baseline (degraded mode). The engine never performs I/O; loading is the
// loader package's job.
package painel
