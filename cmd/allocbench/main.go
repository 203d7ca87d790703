// Command allocbench drives synthetic allocation workloads through the
// allocator strategies and reports what each one did.
package main

func main() {
	execute()
}
