package browser

// stealthScript runs in every frame before any page script and masks the usual
// automation fingerprints.
func stealthScript() string {
	return `(() => {
		try {
			Object.defineProperty(Navigator.prototype, 'webdriver', {
				get: () => undefined,
				configurable: true
			});

			if (!window.chrome) {
				window.chrome = { runtime: {}, app: { isInstalled: false } };
			}

			Object.defineProperty(navigator, 'languages', {
				get: () => ['en-US', 'en'],
				configurable: true
			});

			Object.defineProperty(navigator, 'plugins', {
				get: () => [
					{ name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer' },
					{ name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai' },
					{ name: 'Native Client', filename: 'internal-nacl-plugin' }
				],
				configurable: true
			});

			const originalQuery = window.navigator.permissions && window.navigator.permissions.query;
			if (originalQuery) {
				window.navigator.permissions.query = (parameters) => (
					parameters && parameters.name === 'notifications'
						? Promise.resolve({ state: Notification.permission })
						: originalQuery.call(window.navigator.permissions, parameters)
				);
			}

			const getParameter = WebGLRenderingContext.prototype.getParameter;
			WebGLRenderingContext.prototype.getParameter = function (parameter) {
				if (parameter === 37445) return 'Intel Inc.';
				if (parameter === 37446) return 'Intel Iris OpenGL Engine';
				return getParameter.call(this, parameter);
			};
		} catch (e) {}
	})();`
}

// launchArgs suppress the automation banner and the AutomationControlled blink feature.
func launchArgs() []string {
	return []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--disable-infobars",
		"--no-first-run",
		"--no-default-browser-check",
	}
}
