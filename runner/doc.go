// Package runner invokes the build tool against a staged workspace.
//
// A Factory binds a workspace to a resolved tool version and an isolated tool
// home, producing a Handle. Each Handle call is an independent subprocess:
//
//	f := runner.NewFactory(cfg.Tool, runner.WithResources(os.DirFS("testdata")))
//	h, err := f.Build(ctx, root, "")
//	out, err := h.Run(ctx, "build")
//	err = out.AssertOutputContains("BUILD SUCCESSFUL")
package runner
