// Package mount stages host files as the mount files of a WebAssembly module.
//
// A module sees its mounts as plain file names relative to its working
// directory. [Prepare] copies the input mounts into a private directory which
// the executor pre-opens as the module's root; after the call, [Dir.Collect]
// reads back whatever the module wrote to its output mounts.
//
//	dir, err := mount.Prepare([]mount.Mount{
//	    {Name: "deployFile", HostPath: "./model.bin", Stage: mount.StageDeployment},
//	    {Name: "execFile", HostPath: "./input.bin", Stage: mount.StageExecution},
//	    {Name: "outFile", HostPath: "./result.txt", Stage: mount.StageOutput},
//	})
//	if err != nil {
//	    return err
//	}
//	defer dir.Close()
//
// Mount names are single path elements; anything resolving outside the
// directory is rejected.
package mount
