// Package osmem maps and unmaps anonymous memory pages for the page
// allocator.
package osmem
