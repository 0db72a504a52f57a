package source

import "fmt"

// reportBinding is the page-exposed function observers report through
const reportBinding = "__vitalviewReport"

// observerScript wraps a per-metric observer body with the shared
// report plumbing: entries are flattened to the fields the aggregator
// consumes and serialized through the CDP binding.
func observerScript(body string, reportAll bool) string {
	return fmt.Sprintf(`(() => {
	const reportAll = %t;
	const pack = (entries) => entries.map(e => ({
		name: e.name || '',
		startTime: e.startTime || 0,
		duration: e.duration || 0,
		processingStart: e.processingStart || 0,
		processingEnd: e.processingEnd || 0
	}));
	const report = (name, value, entries) => {
		window.%s(JSON.stringify({ name, value, entries: pack(entries) }));
	};
	%s
})();`, reportAll, reportBinding, body)
}

// script to observe Largest Contentful Paint candidates
const lcpObserver = `
	let latest = null;
	const send = () => { if (latest) report('LCP', latest.startTime || 0, [latest]); };

	new PerformanceObserver((list) => {
		const entries = list.getEntries();
		latest = entries[entries.length - 1]; // use latest LCP candidate
		if (reportAll) send();
	}).observe({ type: 'largest-contentful-paint', buffered: true });

	if (!reportAll) {
		document.addEventListener('visibilitychange', () => {
			if (document.visibilityState === 'hidden') send();
		});
		addEventListener('pagehide', send);
	}`

// script to accumulate Cumulative Layout Shift
const clsObserver = `
	let clsValue = 0;
	let clsEntries = [];
	const send = () => report('CLS', clsValue, clsEntries.slice(-5));

	new PerformanceObserver((list) => {
		for (const entry of list.getEntries()) {
			if (entry.hadRecentInput) continue; // shifts caused by user input don't count
			clsValue += entry.value;
			clsEntries.push(entry);
		}
		if (reportAll) send();
	}).observe({ type: 'layout-shift', buffered: true });

	if (!reportAll) {
		document.addEventListener('visibilitychange', () => {
			if (document.visibilityState === 'hidden') send();
		});
		addEventListener('pagehide', send);
	}`

// script to observe First Input Delay (fires at most once per page)
const fidObserver = `
	new PerformanceObserver((list) => {
		const entry = list.getEntries()[0];
		if (!entry) return;
		report('FID', (entry.processingStart || 0) - entry.startTime, [entry]);
	}).observe({ type: 'first-input', buffered: true });`

// script to track the longest interaction for Interaction to Next Paint
const inpObserver = `
	let longest = null;
	const send = () => { if (longest) report('INP', longest.duration || 0, [longest]); };

	new PerformanceObserver((list) => {
		for (const entry of list.getEntries()) {
			if (!longest || entry.duration > longest.duration) longest = entry;
		}
		if (reportAll) send();
	}).observe({ type: 'event', durationThreshold: 40, buffered: true });

	if (!reportAll) {
		document.addEventListener('visibilitychange', () => {
			if (document.visibilityState === 'hidden') send();
		});
		addEventListener('pagehide', send);
	}`
